package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sefa-b/bank-registry/internal/domain"
)

// auditRepo implements the AuditRepo interface.
type auditRepo struct {
	db DBTX
}

// NewAuditRepo creates a new audit repository.
func NewAuditRepo(db DBTX) AuditRepo {
	return &auditRepo{db: db}
}

// Log creates a new audit log entry.
func (r *auditRepo) Log(ctx context.Context, bankID int64, action domain.AuditAction, details any) error {
	query := `INSERT INTO bank_audit_logs (id, bank_id, action, details, created_at) VALUES ($1, $2, $3, $4, $5)`

	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
	}

	_, err := r.db.Exec(ctx, query, uuid.New(), bankID, string(action), detailsJSON, time.Now().UTC())
	if err != nil {
		return classify("create audit log", err)
	}

	return nil
}

// ListForBank retrieves audit entries for a bank, newest first.
func (r *auditRepo) ListForBank(ctx context.Context, bankID int64, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, bank_id, action, details, created_at FROM bank_audit_logs WHERE bank_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, bankID, limit)
	if err != nil {
		return nil, classify("list audit logs", err)
	}
	defer rows.Close()

	entries := []*domain.AuditEntry{}
	for rows.Next() {
		var (
			entry   domain.AuditEntry
			action  string
			details []byte
		)
		if err := rows.Scan(&entry.ID, &entry.BankID, &action, &details, &entry.CreatedAt); err != nil {
			return nil, classify("scan audit log", err)
		}
		entry.Action = domain.AuditAction(action)
		if len(details) > 0 {
			entry.Details = json.RawMessage(details)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("iterate audit logs", err)
	}

	return entries, nil
}
