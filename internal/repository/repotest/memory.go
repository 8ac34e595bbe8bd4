// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sefa-b/bank-registry/internal/domain"
	"github.com/sefa-b/bank-registry/internal/repository"
)

// BanksRepo is an in-memory repository.BanksRepo. When Err is set every call
// returns it.
type BanksRepo struct {
	mu     sync.Mutex
	rows   map[int64]repository.BankRow
	nextID int64
	Err    error

	Inserts int
}

// NewBanksRepo creates an empty in-memory banks repository.
func NewBanksRepo() *BanksRepo {
	return &BanksRepo{rows: make(map[int64]repository.BankRow)}
}

func (r *BanksRepo) Insert(_ context.Context, name, location string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	r.nextID++
	r.Inserts++
	r.rows[r.nextID] = repository.BankRow{ID: r.nextID, Name: name, Location: location}
	return r.nextID, nil
}

func (r *BanksRepo) SelectAll(_ context.Context) ([]repository.BankRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	rows := make([]repository.BankRow, 0, len(r.rows))
	for _, row := range r.rows {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (r *BanksRepo) SelectOne(_ context.Context, id int64) (repository.BankRow, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return repository.BankRow{}, false, r.Err
	}
	row, ok := r.rows[id]
	return row, ok, nil
}

func (r *BanksRepo) Update(_ context.Context, id int64, name, location string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	r.rows[id] = repository.BankRow{ID: id, Name: name, Location: location}
	return 1, nil
}

func (r *BanksRepo) Delete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

func (r *BanksRepo) Ping(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Err
}

// Len returns the number of stored rows.
func (r *BanksRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// AuditRepo is an in-memory repository.AuditRepo.
type AuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

// NewAuditRepo creates an empty in-memory audit repository.
func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

func (r *AuditRepo) Log(_ context.Context, bankID int64, action domain.AuditAction, details any) error {
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		raw = b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, &domain.AuditEntry{
		ID:        uuid.New(),
		BankID:    bankID,
		Action:    action,
		Details:   raw,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (r *AuditRepo) ListForBank(_ context.Context, bankID int64, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.AuditEntry{}
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].BankID == bankID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

// NewRepositories wires fresh in-memory repositories.
func NewRepositories() (*repository.Repositories, *BanksRepo, *AuditRepo) {
	banks := NewBanksRepo()
	audit := NewAuditRepo()
	return &repository.Repositories{Banks: banks, Audit: audit}, banks, audit
}
