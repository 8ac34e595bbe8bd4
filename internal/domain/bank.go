// Package domain contains the core business entities and types.
package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/sefa-b/bank-registry/internal/errs"
)

// MaxFieldLength mirrors the VARCHAR(100) width of the name and location columns.
const MaxFieldLength = 100

// Bank represents a bank record. ID is assigned by the database on insert and
// never changes afterwards.
type Bank struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Location string `json:"location" db:"location"`
}

// BankRequest carries the fields accepted on create and on full-replace update.
type BankRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// BankPatch carries a partial update. Nil fields are left untouched.
type BankPatch struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
}

// Normalize trims surrounding whitespace from both fields.
func (r *BankRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
}

// Validate validates the bank request. Both fields are required.
func (r *BankRequest) Validate() error {
	if err := validateField("name", r.Name); err != nil {
		return err
	}
	return validateField("location", r.Location)
}

// ToBank converts the request into an entity with the given id.
func (r *BankRequest) ToBank(id int64) *Bank {
	return &Bank{ID: id, Name: r.Name, Location: r.Location}
}

// Validate validates the patch. Provided fields must be non-empty and at least
// one field must be present.
func (p *BankPatch) Validate() error {
	if p.Name == nil && p.Location == nil {
		return errs.NewValidationError("body", "at least one field (name or location) must be provided")
	}
	if p.Name != nil {
		if err := validateField("name", *p.Name); err != nil {
			return err
		}
	}
	if p.Location != nil {
		if err := validateField("location", *p.Location); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the patch onto an existing bank and returns the full-replace
// request that results.
func (p *BankPatch) Apply(current *Bank) BankRequest {
	req := BankRequest{Name: current.Name, Location: current.Location}
	if p.Name != nil {
		req.Name = *p.Name
	}
	if p.Location != nil {
		req.Location = *p.Location
	}
	req.Normalize()
	return req
}

func validateField(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errs.NewValidationError(field, field+": field is required")
	}
	if utf8.RuneCountInString(value) > MaxFieldLength {
		return errs.NewValidationError(field, field+": must be at most 100 characters")
	}
	return nil
}
