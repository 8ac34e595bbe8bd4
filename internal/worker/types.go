// Package worker provides asynchronous processing of audit writes.
package worker

import (
	"context"

	"github.com/google/uuid"
	"github.com/sefa-b/bank-registry/internal/domain"
)

// AuditJob represents one audit entry waiting to be written.
type AuditJob struct {
	ID      uuid.UUID          `json:"id"`
	BankID  int64              `json:"bank_id"`
	Action  domain.AuditAction `json:"action"`
	Details any                `json:"details,omitempty"`
	Ctx     context.Context    `json:"-"` // Carries request values (trace span); never cancelled
}

// JobQueue represents the channels for job submission and control.
type JobQueue struct {
	SubmitChan chan *AuditJob // Channel for submitting jobs
	QuitChan   chan struct{}  // Channel for graceful shutdown
}

// NewJobQueue creates a new job queue with the specified buffer size.
func NewJobQueue(bufferSize int) *JobQueue {
	return &JobQueue{
		SubmitChan: make(chan *AuditJob, bufferSize),
		QuitChan:   make(chan struct{}),
	}
}

// NewAuditJob creates a new audit job with a unique ID. The request context is
// detached from its cancellation so the write can outlive the response.
func NewAuditJob(ctx context.Context, bankID int64, action domain.AuditAction, details any) *AuditJob {
	if ctx == nil {
		ctx = context.Background()
	}
	return &AuditJob{
		ID:      uuid.New(),
		BankID:  bankID,
		Action:  action,
		Details: details,
		Ctx:     context.WithoutCancel(ctx),
	}
}
