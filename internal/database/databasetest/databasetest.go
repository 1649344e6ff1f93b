// Package databasetest opens migrated throwaway SQLite databases for tests.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"storefront/internal/database"
	sqldb "storefront/pkg/database"
	"storefront/pkg/logger"
)

// NewPool opens a fresh SQLite file under t.TempDir with every migration applied.
func NewPool(t testing.TB) *sqldb.Pool {
	t.Helper()

	path := filepath.Join(t.TempDir(), "storefront.db")
	ctx := context.Background()

	pool, err := sqldb.Open(ctx, sqldb.Options{URL: "sqlite:///" + path}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	migrator := database.NewMigrationService(pool.DB(), pool.Dialect(), logger.Nop())
	require.NoError(t, migrator.RunMigrations(ctx))

	return pool
}

// NewProvider returns a session provider over NewPool.
func NewProvider(t testing.TB) (*database.Provider, *sqldb.Pool) {
	t.Helper()

	pool := NewPool(t)
	return database.NewProvider(pool.DB(), false, logger.Nop()), pool
}

// Session acquires a session that is closed when the test ends.
func Session(t testing.TB, p *database.Provider) *database.Session {
	t.Helper()

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
