package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	"storefront/internal/domain"
)

func TestClassify(t *testing.T) {
	plain := errors.New("syntax error")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"pq unique", &pq.Error{Code: "23505", Constraint: "users_username_key"}, domain.ErrConstraintViolation},
		{"pq deadlock", &pq.Error{Code: "40P01"}, domain.ErrStorageBusy},
		{"pq serialization", &pq.Error{Code: "40001"}, domain.ErrStorageBusy},
		{"pgx foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "profiles_user_id_fkey"}, domain.ErrConstraintViolation},
		{"pgx lock not available", &pgconn.PgError{Code: "55P03"}, domain.ErrStorageBusy},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, domain.ErrConstraintViolation},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, domain.ErrStorageBusy},
		{"sqlite locked", fmt.Errorf("update: %w", sqlite3.Error{Code: sqlite3.ErrLocked}), domain.ErrStorageBusy},
		{"bad conn", driver.ErrBadConn, nil},
		{"unknown", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if tt.want == nil {
				var connErr *domain.ConnectionError
				assert.ErrorAs(t, got, &connErr)
				return
			}
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_KeepsConstraintName(t *testing.T) {
	var cerr *domain.ConstraintError
	assert.ErrorAs(t, Classify(&pq.Error{Code: "23505", Constraint: "users_username_key"}), &cerr)
	assert.Equal(t, "users_username_key", cerr.Constraint)
}

func TestClassify_AlreadyClassified(t *testing.T) {
	busy := &domain.BusyError{Err: sql.ErrTxDone}
	assert.Same(t, busy, Classify(busy))
	assert.Nil(t, Classify(nil))
}
