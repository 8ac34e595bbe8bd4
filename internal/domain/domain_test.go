package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/sefa-b/bank-registry/internal/errs"
)

func strPtr(s string) *string { return &s }

// Test BankRequest validation
func TestBankRequestValidation(t *testing.T) {
	tests := []struct {
		name      string
		req       BankRequest
		wantErr   bool
		wantField string
	}{
		{
			name:    "valid request",
			req:     BankRequest{Name: "Alpha Bank", Location: "Springfield"},
			wantErr: false,
		},
		{
			name:      "missing name",
			req:       BankRequest{Location: "Springfield"},
			wantErr:   true,
			wantField: "name",
		},
		{
			name:      "blank name",
			req:       BankRequest{Name: "   ", Location: "Springfield"},
			wantErr:   true,
			wantField: "name",
		},
		{
			name:      "missing location",
			req:       BankRequest{Name: "Alpha Bank"},
			wantErr:   true,
			wantField: "location",
		},
		{
			name:      "name too long",
			req:       BankRequest{Name: strings.Repeat("a", 101), Location: "Springfield"},
			wantErr:   true,
			wantField: "name",
		},
		{
			name:    "name at column width",
			req:     BankRequest{Name: strings.Repeat("ü", 100), Location: "Springfield"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var vErr *errs.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("field = %s, want %s", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestBankPatchValidation(t *testing.T) {
	tests := []struct {
		name    string
		patch   BankPatch
		wantErr bool
	}{
		{name: "empty patch", patch: BankPatch{}, wantErr: true},
		{name: "name only", patch: BankPatch{Name: strPtr("Beta")}, wantErr: false},
		{name: "location only", patch: BankPatch{Location: strPtr("Shelbyville")}, wantErr: false},
		{name: "blank location", patch: BankPatch{Location: strPtr("")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBankPatchApply(t *testing.T) {
	current := &Bank{ID: 3, Name: "Alpha Bank", Location: "Springfield"}

	req := (&BankPatch{Location: strPtr(" Shelbyville ")}).Apply(current)

	if req.Name != "Alpha Bank" {
		t.Errorf("name should be kept, got %q", req.Name)
	}
	if req.Location != "Shelbyville" {
		t.Errorf("location should be replaced and trimmed, got %q", req.Location)
	}
}
