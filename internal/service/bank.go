package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sefa-b/bank-registry/internal/domain"
	"github.com/sefa-b/bank-registry/internal/errs"
	"github.com/sefa-b/bank-registry/internal/repository"
	"github.com/sefa-b/bank-registry/internal/utils"
	"github.com/sefa-b/bank-registry/internal/worker"
)

const bankNotFound = "Bank not found"

// BankServiceImpl implements the BankService interface.
type BankServiceImpl struct {
	banks   repository.BanksRepo
	audit   repository.AuditRepo
	auditor AuditSubmitter         // Optional
	metrics *utils.MetricsCollector // Optional
	tracer  trace.Tracer
}

// NewBankService creates a new bank service. auditor and metrics may be nil.
func NewBankService(repos *repository.Repositories, auditor AuditSubmitter, metrics *utils.MetricsCollector) *BankServiceImpl {
	return &BankServiceImpl{
		banks:   repos.Banks,
		audit:   repos.Audit,
		auditor: auditor,
		metrics: metrics,
		tracer:  utils.GetTracer("bank-registry/service"),
	}
}

// Create validates and stores a new bank.
func (s *BankServiceImpl) Create(ctx context.Context, req *domain.BankRequest) (bank *domain.Bank, err error) {
	ctx, span := s.tracer.Start(ctx, "BankService.Create")
	defer func() { s.finish(span, "create", err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := s.banks.Insert(ctx, req.Name, req.Location)
	if err != nil {
		return nil, err
	}

	bank = req.ToBank(id)
	span.SetAttributes(attribute.Int64("bank.id", id))
	s.submitAudit(ctx, id, domain.ActionCreated, bank)

	return bank, nil
}

// GetAll returns every bank ordered by id.
func (s *BankServiceImpl) GetAll(ctx context.Context) (banks []*domain.Bank, err error) {
	ctx, span := s.tracer.Start(ctx, "BankService.GetAll")
	defer func() { s.finish(span, "list", err) }()

	rows, err := s.banks.SelectAll(ctx)
	if err != nil {
		return nil, err
	}

	banks = make([]*domain.Bank, len(rows))
	for i, row := range rows {
		banks[i] = toBank(row)
	}
	span.SetAttributes(attribute.Int("bank.count", len(banks)))

	return banks, nil
}

// GetByID retrieves a bank by ID.
func (s *BankServiceImpl) GetByID(ctx context.Context, id int64) (bank *domain.Bank, err error) {
	ctx, span := s.tracer.Start(ctx, "BankService.GetByID",
		trace.WithAttributes(attribute.Int64("bank.id", id)))
	defer func() { s.finish(span, "get", err) }()

	return s.getByID(ctx, id)
}

// Update replaces name and location of an existing bank. A missing id is
// reported as not found and never inserted.
func (s *BankServiceImpl) Update(ctx context.Context, id int64, req *domain.BankRequest) (bank *domain.Bank, err error) {
	ctx, span := s.tracer.Start(ctx, "BankService.Update",
		trace.WithAttributes(attribute.Int64("bank.id", id)))
	defer func() { s.finish(span, "update", err) }()

	return s.replace(ctx, id, req)
}

// Patch updates only the provided fields of an existing bank.
func (s *BankServiceImpl) Patch(ctx context.Context, id int64, patch *domain.BankPatch) (bank *domain.Bank, err error) {
	ctx, span := s.tracer.Start(ctx, "BankService.Patch",
		trace.WithAttributes(attribute.Int64("bank.id", id)))
	defer func() { s.finish(span, "patch", err) }()

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req := patch.Apply(current)
	return s.replace(ctx, id, &req)
}

// Delete removes a bank.
func (s *BankServiceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "BankService.Delete",
		trace.WithAttributes(attribute.Int64("bank.id", id)))
	defer func() { s.finish(span, "delete", err) }()

	affected, err := s.banks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.NewNotFoundError(bankNotFound)
	}

	s.submitAudit(ctx, id, domain.ActionDeleted, nil)
	return nil
}

// History returns the audit trail of a bank, newest first. The trail of a
// deleted bank remains readable.
func (s *BankServiceImpl) History(ctx context.Context, id int64, limit int) (entries []*domain.AuditEntry, err error) {
	ctx, span := s.tracer.Start(ctx, "BankService.History",
		trace.WithAttributes(attribute.Int64("bank.id", id)))
	defer func() { s.finish(span, "history", err) }()

	entries, err = s.audit.ListForBank(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return entries, nil
	}

	if _, err := s.getByID(ctx, id); err != nil {
		return nil, err
	}
	return entries, nil
}

// Health checks database connectivity.
func (s *BankServiceImpl) Health(ctx context.Context) error {
	return s.banks.Ping(ctx)
}

func (s *BankServiceImpl) getByID(ctx context.Context, id int64) (*domain.Bank, error) {
	row, found, err := s.banks.SelectOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewNotFoundError(bankNotFound)
	}
	return toBank(row), nil
}

func (s *BankServiceImpl) replace(ctx context.Context, id int64, req *domain.BankRequest) (*domain.Bank, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	affected, err := s.banks.Update(ctx, id, req.Name, req.Location)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, errs.NewNotFoundError(bankNotFound)
	}

	bank := req.ToBank(id)
	s.submitAudit(ctx, id, domain.ActionUpdated, bank)
	return bank, nil
}

// submitAudit hands the entry to the worker pool. Audit failures never fail
// the operation.
func (s *BankServiceImpl) submitAudit(ctx context.Context, bankID int64, action domain.AuditAction, details any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Submit(worker.NewAuditJob(ctx, bankID, action, details)); err != nil {
		utils.Warn("audit entry not queued",
			slog.Int64("bank_id", bankID),
			slog.String("action", string(action)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *BankServiceImpl) finish(span trace.Span, operation string, err error) {
	defer span.End()

	outcome := outcomeOf(err)
	if s.metrics != nil {
		s.metrics.RecordOperation(operation, outcome)
	}
	if outcome == "error" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func outcomeOf(err error) string {
	var (
		validationErr *errs.ValidationError
		notFoundErr   *errs.NotFoundError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &validationErr):
		return "invalid"
	case errors.As(err, &notFoundErr):
		return "not_found"
	default:
		return "error"
	}
}

func toBank(row repository.BankRow) *domain.Bank {
	return &domain.Bank{ID: row.ID, Name: row.Name, Location: row.Location}
}
