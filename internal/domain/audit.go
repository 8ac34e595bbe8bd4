package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one mutation of a bank.
type AuditEntry struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	BankID    int64           `json:"bank_id" db:"bank_id"`
	Action    AuditAction     `json:"action" db:"action"`
	Details   json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// AuditAction defines the mutations that are audited.
type AuditAction string

const (
	ActionCreated AuditAction = "created"
	ActionUpdated AuditAction = "updated"
	ActionDeleted AuditAction = "deleted"
)
