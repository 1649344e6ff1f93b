package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	sqldb "storefront/pkg/database"
	"storefront/pkg/logger"
)

type Migration struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	AppliedAt time.Time `db:"applied_at"`
}

// MigrationFunc runs the DDL of one migration inside its transaction.
type MigrationFunc func(ctx context.Context, tx *sqlx.Tx, d sqldb.Dialect) error

type namedMigration struct {
	Name string
	Func MigrationFunc
}

var migrations = []namedMigration{
	{"create_products_table", CreateProductsTable},
	{"create_users_table", CreateUsersTable},
	{"create_profiles_table", CreateProfilesTable},
	{"create_posts_table", CreatePostsTable},
}

type MigrationService struct {
	db      *sqlx.DB
	dialect sqldb.Dialect
	logger  logger.Logger
}

func NewMigrationService(db *sqlx.DB, dialect sqldb.Dialect, logger logger.Logger) *MigrationService {
	return &MigrationService{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}
}

func (m *MigrationService) InitMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS migrations (
        id %s,
        name TEXT NOT NULL UNIQUE,
        applied_at %s NOT NULL
    )
    `, m.dialect.PrimaryKey, m.dialect.Timestamp)

	_, err := m.db.ExecContext(ctx, query)
	if err != nil {
		m.logger.Error("Migration tablosu oluşturulamadı", map[string]interface{}{"error": err.Error()})
		return err
	}

	return nil
}

func (m *MigrationService) IsMigrationApplied(ctx context.Context, name string) (bool, error) {
	var count int
	query := m.db.Rebind("SELECT COUNT(*) FROM migrations WHERE name = ?")
	err := m.db.GetContext(ctx, &count, query, name)
	if err != nil {
		m.logger.Error("Migration durumu kontrol edilemedi", map[string]interface{}{"name": name, "error": err.Error()})
		return false, err
	}

	return count > 0, nil
}

// Applied lists recorded migrations in the order they ran.
func (m *MigrationService) Applied(ctx context.Context) ([]Migration, error) {
	var applied []Migration
	err := m.db.SelectContext(ctx, &applied, "SELECT id, name, applied_at FROM migrations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("uygulanan migrationlar okunamadı: %w", err)
	}
	return applied, nil
}

func (m *MigrationService) recordMigration(ctx context.Context, tx *sqlx.Tx, name string) error {
	query := tx.Rebind("INSERT INTO migrations (name, applied_at) VALUES (?, ?)")
	_, err := tx.ExecContext(ctx, query, name, time.Now().UTC())
	if err != nil {
		m.logger.Error("Migration kaydedilemedi", map[string]interface{}{"name": name, "error": err.Error()})
		return err
	}

	return nil
}

// ApplyMigration runs fn and records it in one transaction, skipping migrations
// that were already applied.
func (m *MigrationService) ApplyMigration(ctx context.Context, name string, fn MigrationFunc) (err error) {
	applied, err := m.IsMigrationApplied(ctx, name)
	if err != nil {
		return err
	}

	if applied {
		m.logger.Debug("Migration zaten uygulanmış", map[string]interface{}{"name": name})
		return nil
	}

	m.logger.Info("Migration uygulanıyor", map[string]interface{}{"name": name})

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		m.logger.Error("Transaction başlatılamadı", map[string]interface{}{"error": err.Error()})
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			m.logger.Error("Migration geri alındı", map[string]interface{}{"name": name, "error": err.Error()})
		}
	}()

	if err = fn(ctx, tx, m.dialect); err != nil {
		return err
	}

	if err = m.recordMigration(ctx, tx, name); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		m.logger.Error("Transaction commit edilemedi", map[string]interface{}{"error": err.Error()})
		return err
	}

	m.logger.Info("Migration başarıyla uygulandı", map[string]interface{}{"name": name})
	return nil
}

func (m *MigrationService) RunMigrations(ctx context.Context) error {
	m.logger.Info("Migrationlar başlatılıyor", map[string]interface{}{"dialect": m.dialect.Name})

	if err := m.InitMigrationTable(ctx); err != nil {
		return fmt.Errorf("migration tablosu oluşturulamadı: %w", err)
	}

	for _, migration := range migrations {
		if err := m.ApplyMigration(ctx, migration.Name, migration.Func); err != nil {
			return fmt.Errorf("migration uygulanamadı %s: %w", migration.Name, err)
		}
	}

	return nil
}

func CreateProductsTable(ctx context.Context, tx *sqlx.Tx, d sqldb.Dialect) error {
	query := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS products (
        id %s,
        name TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        price INTEGER NOT NULL CHECK (price >= 1 AND price <= 1000000)
    )
    `, d.PrimaryKey)

	_, err := tx.ExecContext(ctx, query)
	return err
}

func CreateUsersTable(ctx context.Context, tx *sqlx.Tx, d sqldb.Dialect) error {
	query := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS users (
        id %s,
        username VARCHAR(32) NOT NULL UNIQUE
    )
    `, d.PrimaryKey)

	_, err := tx.ExecContext(ctx, query)
	return err
}

func CreateProfilesTable(ctx context.Context, tx *sqlx.Tx, d sqldb.Dialect) error {
	query := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS profiles (
        id %s,
        first_name VARCHAR(40),
        last_name VARCHAR(40),
        bio TEXT,
        user_id %s NOT NULL UNIQUE,
        FOREIGN KEY (user_id) REFERENCES users (id)
    )
    `, d.PrimaryKey, d.Reference)

	_, err := tx.ExecContext(ctx, query)
	return err
}

func CreatePostsTable(ctx context.Context, tx *sqlx.Tx, d sqldb.Dialect) error {
	query := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS posts (
        id %s,
        title VARCHAR(100) NOT NULL,
        body TEXT NOT NULL DEFAULT '',
        user_id %s NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id)
    )
    `, d.PrimaryKey, d.Reference)
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS posts_user_id_idx ON posts (user_id)")
	return err
}
