// Package upload attaches client files (signature image, proof slots) to a
// loan that is still being prepared.
package upload

import (
	"context"
	"path"
	"strings"

	"creditflow-backend/internal/domain/apperror"
	domain "creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/uow"
	"creditflow-backend/internal/infrastructure/blob"
	"creditflow-backend/internal/infrastructure/logger"
	loanuc "creditflow-backend/internal/usecase/loan"
	"creditflow-backend/pkg/id"
)

const MaxFileBytes = 10 << 20

var (
	signatureTypes = map[string]string{"image/png": ".png", "image/jpeg": ".jpg"}
	slotTypes      = map[string]string{"application/pdf": ".pdf", "image/png": ".png", "image/jpeg": ".jpg"}
)

type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (blob.Locator, error)
	Delete(ctx context.Context, key string) error
}

type File struct {
	ContentType string
	Data        []byte
}

type Usecase struct {
	loans    domain.Repository
	uow      uow.UnitOfWork
	uploader Uploader
	log      logger.Logger
}

func NewUsecase(loans domain.Repository, tx uow.UnitOfWork, up Uploader, log logger.Logger) *Usecase {
	if log == nil {
		log = logger.NewNop()
	}
	return &Usecase{loans: loans, uow: tx, uploader: up, log: log}
}

func editable(l *domain.Loan) error {
	if l.Status != domain.StatusDraft && l.Status != domain.StatusPending {
		return apperror.PreconditionFailed("files can only change while the loan is draft or pending, loan is " + string(l.Status))
	}
	return nil
}

func checkFile(f File, allowed map[string]string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(f.ContentType, ";")[0]))
	ext, ok := allowed[ct]
	if !ok {
		return "", apperror.InvalidInput("unsupported content type " + f.ContentType)
	}
	if len(f.Data) == 0 {
		return "", apperror.InvalidInput("empty file")
	}
	if len(f.Data) > MaxFileBytes {
		return "", apperror.InvalidInput("file too large")
	}
	return ext, nil
}

// store uploads the file, then applies set to the locked loan. The object
// is removed again if the loan cannot take it.
func (u *Usecase) store(ctx context.Context, loanID, key, contentType string, data []byte, set func(l *domain.Loan, loc blob.Locator)) (*domain.Loan, error) {
	current, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := editable(current); err != nil {
		return nil, err
	}

	loc, err := u.uploader.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, err
	}

	var out *domain.Loan
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if err := editable(l); err != nil {
			return err
		}
		set(l, loc)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		if derr := u.uploader.Delete(context.WithoutCancel(ctx), key); derr != nil {
			u.log.Warn("orphan upload not removed", map[string]any{"key": key, "error": derr})
		}
		return nil, err
	}
	return out, nil
}

func (u *Usecase) AttachSignature(ctx context.Context, loanID string, f File) (*loanuc.LoanDTO, error) {
	ext, err := checkFile(f, signatureTypes)
	if err != nil {
		return nil, err
	}
	upID := id.NewUploadID()
	key := path.Join("signatures", loanID, upID+ext)

	l, err := u.store(ctx, loanID, key, f.ContentType, f.Data, func(l *domain.Loan, loc blob.Locator) {
		url := loc.URL
		l.Signature = &url
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("signature attached", map[string]any{"loan_id": loanID, "key": key})
	return loanuc.ToDTO(l), nil
}

// UploadReplacement stores a new file for one proof slot and gives it a
// fresh correlation id.
func (u *Usecase) UploadReplacement(ctx context.Context, loanID, slotName string, f File) (*loanuc.LoanDTO, error) {
	slot, ok := domain.ParseSlot(slotName)
	if !ok {
		return nil, apperror.InvalidInput("unknown upload slot " + slotName)
	}
	ext, err := checkFile(f, slotTypes)
	if err != nil {
		return nil, err
	}
	upID := id.NewUploadID()
	key := path.Join("uploads", loanID, string(slot), upID+ext)

	l, err := u.store(ctx, loanID, key, f.ContentType, f.Data, func(l *domain.Loan, loc blob.Locator) {
		l.SetSlot(slot, loc.URL, upID)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("slot uploaded", map[string]any{"loan_id": loanID, "slot": string(slot), "upid": upID})
	return loanuc.ToDTO(l), nil
}
