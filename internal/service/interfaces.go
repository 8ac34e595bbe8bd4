// Package service defines interfaces for business logic services.
package service

import (
	"context"
	"time"

	"github.com/sefa-b/bank-registry/internal/domain"
	"github.com/sefa-b/bank-registry/internal/worker"
)

// BankService defines the entity-level operations on banks.
type BankService interface {
	// Create validates and stores a new bank.
	Create(ctx context.Context, req *domain.BankRequest) (*domain.Bank, error)

	// GetAll returns every bank ordered by id.
	GetAll(ctx context.Context) ([]*domain.Bank, error)

	// GetByID retrieves a bank by ID.
	GetByID(ctx context.Context, id int64) (*domain.Bank, error)

	// Update replaces name and location of an existing bank.
	Update(ctx context.Context, id int64, req *domain.BankRequest) (*domain.Bank, error)

	// Patch updates only the provided fields of an existing bank.
	Patch(ctx context.Context, id int64, patch *domain.BankPatch) (*domain.Bank, error)

	// Delete removes a bank.
	Delete(ctx context.Context, id int64) error

	// History returns the audit trail of a bank, newest first.
	History(ctx context.Context, id int64, limit int) ([]*domain.AuditEntry, error)

	// Health checks database connectivity.
	Health(ctx context.Context) error
}

// RateLimiter counts requests per client in fixed windows.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, clientIP string, maxRequests int, window time.Duration) (bool, error)
}

// AuditSubmitter accepts audit jobs for asynchronous writing.
type AuditSubmitter interface {
	Submit(job *worker.AuditJob) error
}
