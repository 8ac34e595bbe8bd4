package repository

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sefa-b/bank-registry/internal/errs"
)

// integrityViolationClass is the SQLSTATE class for constraint violations
// (not_null_violation, unique_violation, check_violation, ...).
const integrityViolationClass = "23"

// classify converts a driver error into the errs taxonomy. Errors that are
// neither connectivity nor constraint failures are wrapped unchanged.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, integrityViolationClass) {
		return errs.NewConstraintError(op, pgErr.ConstraintName, err)
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return errs.NewConnectionError(op, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
