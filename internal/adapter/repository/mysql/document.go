package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"creditflow-backend/internal/domain/apperror"
	"creditflow-backend/internal/domain/document"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) CreateSet(ctx context.Context, docs []document.GeneratedDocument) error {
	if len(docs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&docs).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.PreconditionFailed("documents already generated for this loan")
	}
	return err
}

func (r *DocumentRepository) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]document.GeneratedDocument, error) {
	var out []document.GeneratedDocument
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *DocumentRepository) CountByLoanID(ctx context.Context, loanNumericID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&document.GeneratedDocument{}).
		Where("loan_id = ?", loanNumericID).
		Count(&n).Error
	return n, err
}
