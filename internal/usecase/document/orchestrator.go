// Package document drives legal document generation: discovering approved
// loans without documents, rendering and uploading the four canonical
// documents, and committing them all-or-nothing per loan.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"creditflow-backend/internal/domain/apperror"
	"creditflow-backend/internal/domain/document"
	"creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/uow"
	"creditflow-backend/internal/domain/user"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/infrastructure/metrics"
	"creditflow-backend/internal/infrastructure/render"
	"creditflow-backend/pkg/id"
)

const DefaultBatchSize = 100

type Config struct {
	// BatchSize caps how many eligible loans one sweep picks up.
	BatchSize int
	// Workers is the number of loans processed at once.
	Workers int
}

type Orchestrator struct {
	loans    loan.Repository
	users    user.Repository
	docs     document.Repository
	uow      uow.UnitOfWork
	renderer render.Renderer
	uploader Uploader
	claimer  Claimer
	log      logger.Logger
	cfg      Config
	now      func() time.Time
}

type Deps struct {
	Loans     loan.Repository
	Users     user.Repository
	Documents document.Repository
	UoW       uow.UnitOfWork
	Renderer  render.Renderer
	Uploader  Uploader
	// Claimer is optional; without it concurrent runs rely on the commit
	// re-check alone.
	Claimer Claimer
	Log     logger.Logger
}

func NewOrchestrator(d Deps, cfg Config) *Orchestrator {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := d.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Orchestrator{
		loans:    d.Loans,
		users:    d.Users,
		docs:     d.Documents,
		uow:      d.UoW,
		renderer: d.Renderer,
		uploader: d.Uploader,
		claimer:  d.Claimer,
		log:      log,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FindEligible lists approved loans that have no generated documents yet.
func (o *Orchestrator) FindEligible(ctx context.Context) ([]loan.Loan, error) {
	return o.loans.FindEligibleForDocuments(ctx, o.cfg.BatchSize)
}

// ProcessBatch handles every loan independently; one loan failing never
// stops the others.
func (o *Orchestrator) ProcessBatch(ctx context.Context, loans []loan.Loan) BatchReport {
	runID := id.NewRunID()
	details := make([]LoanResult, len(loans))

	if o.cfg.Workers == 1 {
		for i := range loans {
			details[i], _ = o.processLoan(ctx, runID, &loans[i])
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.cfg.Workers)
		for i := range loans {
			g.Go(func() error {
				details[i], _ = o.processLoan(ctx, runID, &loans[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	report := BatchReport{Processed: len(loans), Details: details}
	for _, d := range details {
		if d.Status == StatusSuccess {
			report.Successful++
		} else {
			report.Failed++
		}
	}
	return report
}

// RunSweep is FindEligible followed by ProcessBatch.
func (o *Orchestrator) RunSweep(ctx context.Context) (BatchReport, error) {
	loans, err := o.FindEligible(ctx)
	if err != nil {
		return BatchReport{}, fmt.Errorf("find eligible loans: %w", err)
	}
	report := o.ProcessBatch(ctx, loans)
	o.log.Info("document sweep finished", map[string]any{
		"processed":  report.Processed,
		"successful": report.Successful,
		"failed":     report.Failed,
	})
	return report, nil
}

// RunPeriodic sweeps once right away and then on every tick until ctx ends.
func (o *Orchestrator) RunPeriodic(ctx context.Context, interval time.Duration) {
	sweep := func() {
		if _, err := o.RunSweep(ctx); err != nil {
			o.log.Error("document sweep failed", map[string]any{"error": err})
		}
	}
	sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}

// GenerateForLoan runs the pipeline for a single loan on request. Unlike a
// sweep, a failed loan is returned as an error alongside its result.
func (o *Orchestrator) GenerateForLoan(ctx context.Context, loanID string) (LoanResult, error) {
	l, err := o.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return LoanResult{}, err
	}
	for _, st := range loan.NotDocumentable {
		if l.Status == st {
			return LoanResult{}, apperror.PreconditionFailed("documents are only generated for approved loans, loan is " + string(l.Status))
		}
	}
	n, err := o.docs.CountByLoanID(ctx, l.ID)
	if err != nil {
		return LoanResult{}, err
	}
	if n > 0 {
		return LoanResult{}, apperror.PreconditionFailed("documents already generated for loan " + loanID)
	}
	return o.processLoan(ctx, id.NewRunID(), l)
}

func (o *Orchestrator) ListDocuments(ctx context.Context, loanID string) ([]document.GeneratedDocument, error) {
	l, err := o.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return o.docs.ListByLoanID(ctx, l.ID)
}

// validationError marks a loan that cannot be documented as it stands.
type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func (o *Orchestrator) validate(ctx context.Context, l *loan.Loan) (*user.User, error) {
	if l.Status == loan.StatusDraft {
		return nil, &validationError{"loan is still a draft"}
	}
	if !l.HasSignature() {
		return nil, &validationError{"signature missing"}
	}
	if strings.TrimSpace(l.UserID) == "" {
		return nil, &validationError{"user id missing"}
	}
	u, err := o.users.GetByUserID(ctx, l.UserID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, &validationError{"user " + l.UserID + " not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", l.UserID, err)
	}
	if strings.TrimSpace(u.DocumentNumber) == "" {
		return u, &validationError{"identity document number missing"}
	}
	return u, nil
}

func (o *Orchestrator) processLoan(ctx context.Context, runID string, l *loan.Loan) (res LoanResult, err error) {
	start := time.Now()
	res = LoanResult{LoanID: l.LoanID, UserID: l.UserID}
	log := o.log.With(map[string]any{"loan_id": l.LoanID, "run_id": runID})

	defer func() {
		metrics.LoanProcessingDuration.Observe(time.Since(start).Seconds())
		metrics.SweepLoans.WithLabelValues(string(res.Status)).Inc()
		if err != nil {
			res.Error = err.Error()
			log.Warn("document generation failed", map[string]any{"status": string(res.Status), "error": err})
		}
	}()

	if o.claimer != nil {
		release, ok, cerr := o.claimer.Claim(ctx, l.LoanID, runID)
		if cerr != nil {
			res.Status = StatusFailed
			return res, cerr
		}
		if !ok {
			res.Status = StatusFailed
			return res, apperror.PreconditionFailed("claimed by another run")
		}
		defer release(context.WithoutCancel(ctx))
	}

	// Discovery may be stale: another run can have committed between
	// FindEligible and the claim. Its objects live at the same keys.
	n, cerr := o.docs.CountByLoanID(ctx, l.ID)
	if cerr != nil {
		res.Status = StatusFailed
		return res, fmt.Errorf("count documents: %w", cerr)
	}
	if n > 0 {
		res.Status = StatusFailed
		return res, apperror.PreconditionFailed("documents already generated for loan " + l.LoanID)
	}

	u, verr := o.validate(ctx, l)
	if u != nil {
		res.Name = u.FullName
	}
	if verr != nil {
		var ve *validationError
		if errors.As(verr, &ve) {
			res.Status = StatusValidationError
			return res, apperror.PreconditionFailed(ve.msg)
		}
		res.Status = StatusFailed
		return res, verr
	}

	docs, err := o.generate(ctx, l, u)
	if err != nil {
		res.Status = StatusFailed
		return res, err
	}

	res.Status = StatusSuccess
	res.Documents = docs
	log.Info("documents generated", map[string]any{"set_id": docs[0].SetID})
	return res, nil
}

type rendered struct {
	item workItem
	body []byte
}

func (o *Orchestrator) generate(ctx context.Context, l *loan.Loan, u *user.User) ([]document.GeneratedDocument, error) {
	items := buildWorkItems(l, u, o.renderer.Extension(), o.now())

	bodies := make([]rendered, len(items))
	for i, it := range items {
		b, err := o.renderer.Render(ctx, it.kind, it.fields)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", it.kind, err)
		}
		bodies[i] = rendered{item: it, body: b}
	}

	contentType := o.renderer.ContentType()
	uploaded := make([]bool, len(bodies))
	docs := make([]document.GeneratedDocument, len(bodies))
	setID := id.NewUploadID()

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range bodies {
		g.Go(func() error {
			loc, err := o.uploader.Upload(gctx, r.item.key, contentType, r.body)
			if err != nil {
				return err
			}
			uploaded[i] = true
			docs[i] = document.GeneratedDocument{
				LoanID:       l.ID,
				DocumentType: r.item.kind,
				SetID:        setID,
				UploadID:     id.NewUploadID(),
				StorageKey:   loc.Key,
				PublicURL:    loc.URL,
				FileType:     contentType,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.cleanup(ctx, items, uploaded)
		return nil, err
	}

	err := o.uow.WithinTx(ctx, func(r uow.Repos) error {
		n, err := r.Documents.CountByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperror.PreconditionFailed("documents already generated for loan " + l.LoanID)
		}
		return r.Documents.CreateSet(ctx, docs)
	})
	if err != nil {
		// the objects now belong to whichever run committed first
		if !errors.Is(err, apperror.ErrPreconditionFailed) {
			o.cleanup(ctx, items, uploaded)
		}
		return nil, err
	}
	return docs, nil
}

// cleanup removes objects uploaded for a loan that did not commit.
func (o *Orchestrator) cleanup(ctx context.Context, items []workItem, uploaded []bool) {
	ctx = context.WithoutCancel(ctx)
	for i, ok := range uploaded {
		if !ok {
			continue
		}
		if err := o.uploader.Delete(ctx, items[i].key); err != nil {
			o.log.Warn("partial upload not removed", map[string]any{"key": items[i].key, "error": err})
		}
	}
}
