package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"storefront/internal/domain"
)

// Classify turns driver specific failures into the domain error taxonomy.
// Integrity violations (SQLSTATE class 23) become *domain.ConstraintError,
// lock timeouts and deadlocks become *domain.BusyError, lost connections become
// *domain.ConnectionError; everything else is returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var constraintErr *domain.ConstraintError
	var connErr *domain.ConnectionError
	var busyErr *domain.BusyError
	if errors.As(err, &constraintErr) || errors.As(err, &connErr) || errors.As(err, &busyErr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "23":
			return &domain.ConstraintError{Constraint: pqErr.Constraint, Err: err}
		case isPostgresBusy(string(pqErr.Code)):
			return &domain.BusyError{Err: err}
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return &domain.ConstraintError{Constraint: pgErr.ConstraintName, Err: err}
		case isPostgresBusy(pgErr.Code):
			return &domain.BusyError{Err: err}
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrConstraint:
			return &domain.ConstraintError{Err: err}
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return &domain.BusyError{Err: err}
		}
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return &domain.ConnectionError{Err: err}
	}

	return err
}

// isPostgresBusy matches serialization_failure, deadlock_detected and lock_not_available.
func isPostgresBusy(code string) bool {
	switch code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}
