// Package repository defines interfaces for data access.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sefa-b/bank-registry/internal/domain"
)

// DBTX is the subset of *pgxpool.Pool the repositories use. Each call checks a
// connection out of the pool for the duration of the statement and returns it
// when the call (or, for Query, the rows) is closed.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// BankRow is a raw row of the banks table.
type BankRow struct {
	ID       int64
	Name     string
	Location string
}

// BanksRepo runs the parameterized statements for the banks table.
type BanksRepo interface {
	// Insert inserts a row and returns the generated id.
	Insert(ctx context.Context, name, location string) (int64, error)

	// SelectAll returns every row ordered by id ascending.
	SelectAll(ctx context.Context) ([]BankRow, error)

	// SelectOne returns the row with the given id. found is false when no row matches.
	SelectOne(ctx context.Context, id int64) (row BankRow, found bool, err error)

	// Update replaces name and location and returns the number of rows affected.
	Update(ctx context.Context, id int64, name, location string) (int64, error)

	// Delete removes the row and returns the number of rows affected.
	Delete(ctx context.Context, id int64) (int64, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

// AuditRepo defines the interface for audit log operations.
type AuditRepo interface {
	// Log creates a new audit log entry.
	Log(ctx context.Context, bankID int64, action domain.AuditAction, details any) error

	// ListForBank retrieves audit entries for a bank, newest first.
	ListForBank(ctx context.Context, bankID int64, limit int) ([]*domain.AuditEntry, error)
}

// Repositories aggregates all repository interfaces.
type Repositories struct {
	Banks BanksRepo
	Audit AuditRepo
}

// NewRepositories builds every repository over the same pool handle.
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Banks: NewBanksRepo(db.Pool),
		Audit: NewAuditRepo(db.Pool),
	}
}
