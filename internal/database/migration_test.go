package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/database"
	"storefront/internal/database/databasetest"
	sqldb "storefront/pkg/database"
	"storefront/pkg/logger"
)

func TestMigrationService_RunMigrationsIsIdempotent(t *testing.T) {
	pool := databasetest.NewPool(t)
	ctx := context.Background()

	migrator := database.NewMigrationService(pool.DB(), pool.Dialect(), logger.Nop())
	require.NoError(t, migrator.RunMigrations(ctx))

	applied, err := migrator.Applied(ctx)
	require.NoError(t, err)

	names := make([]string, len(applied))
	for i, m := range applied {
		names[i] = m.Name
	}
	assert.Equal(t, []string{
		"create_products_table",
		"create_users_table",
		"create_profiles_table",
		"create_posts_table",
	}, names)
}

func TestMigrationService_FailedMigrationRollsBack(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	migrator := database.NewMigrationService(sqlx.NewDb(mockDB, "sqlmock"), sqldb.SQLite, logger.Nop())
	ctx := context.Background()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("create_products_table").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS products").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = migrator.RunMigrations(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create_products_table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationService_SkipsAppliedMigration(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	migrator := database.NewMigrationService(sqlx.NewDb(mockDB, "sqlmock"), sqldb.SQLite, logger.Nop())

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("create_users_table").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err = migrator.ApplyMigration(context.Background(), "create_users_table", database.CreateUsersTable)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
