// Package database opens the shared connection pool and knows the SQL dialect
// differences between the supported drivers.
package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type Dialect struct {
	Name       string
	DriverName string
	PrimaryKey string
	Reference  string
	Timestamp  string
}

var (
	Postgres = Dialect{
		Name:       "postgres",
		DriverName: "postgres",
		PrimaryKey: "BIGSERIAL PRIMARY KEY",
		Reference:  "BIGINT",
		Timestamp:  "TIMESTAMPTZ",
	}

	PostgresPgx = Dialect{
		Name:       "postgres",
		DriverName: "pgx",
		PrimaryKey: "BIGSERIAL PRIMARY KEY",
		Reference:  "BIGINT",
		Timestamp:  "TIMESTAMPTZ",
	}

	SQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite3",
		PrimaryKey: "INTEGER PRIMARY KEY AUTOINCREMENT",
		Reference:  "INTEGER",
		Timestamp:  "TIMESTAMP",
	}
)

// ParseURL maps a connection URL onto a dialect and a driver DSN.
//
//	postgres://, postgresql://, postgresql+asyncpg://  -> lib/pq
//	pgx://                                             -> pgx stdlib
//	sqlite://file.db, sqlite:///rel.db, sqlite:////abs.db, sqlite://:memory:
func ParseURL(raw string) (Dialect, string, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Dialect{}, "", fmt.Errorf("geçersiz bağlantı adresi: %q", raw)
	}

	scheme = strings.ToLower(scheme)
	if base, _, found := strings.Cut(scheme, "+"); found {
		scheme = base
	}

	switch scheme {
	case "postgres", "postgresql":
		return Postgres, "postgres://" + rest, nil
	case "pgx":
		return PostgresPgx, "postgres://" + rest, nil
	case "sqlite", "sqlite3":
		return SQLite, sqliteDSN(rest), nil
	default:
		return Dialect{}, "", fmt.Errorf("desteklenmeyen veritabanı şeması: %q", scheme)
	}
}

// sqliteParams takes the write lock at BEGIN. A session that reads and then
// writes queues on the busy timeout instead of failing the lock upgrade.
const sqliteParams = "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

func sqliteDSN(path string) string {
	path = strings.TrimPrefix(path, "/")
	if path == "" || path == ":memory:" {
		return "file::memory:?cache=shared&" + sqliteParams
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + sqliteParams
}

// Redact hides the password of a connection URL for logging.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

type Options struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type Pool struct {
	db      *sqlx.DB
	dialect Dialect
	logger  logger.Logger
}

func Open(ctx context.Context, opts Options, logger logger.Logger) (*Pool, error) {
	dialect, dsn, err := ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, &domain.ConnectionError{Err: err}
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Error("Veritabanı bağlantısı başarısız", map[string]interface{}{
			"url":   Redact(opts.URL),
			"error": err.Error(),
		})
		return nil, &domain.ConnectionError{Err: err}
	}

	logger.Info("Veritabanı bağlantısı başarılı", map[string]interface{}{
		"driver": dialect.DriverName,
		"url":    Redact(opts.URL),
	})

	return &Pool{db: db, dialect: dialect, logger: logger}, nil
}

// NewPool wraps an already opened handle.
func NewPool(db *sqlx.DB, dialect Dialect, logger logger.Logger) *Pool {
	return &Pool{db: db, dialect: dialect, logger: logger}
}

func (p *Pool) DB() *sqlx.DB {
	return p.db
}

func (p *Pool) Dialect() Dialect {
	return p.dialect
}

func (p *Pool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Pool) Close() error {
	if err := p.db.Close(); err != nil {
		p.logger.Error("Veritabanı kapatma hatası", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (p *Pool) Stats() map[string]interface{} {
	stats := p.db.Stats()
	return map[string]interface{}{
		"driver":           p.dialect.DriverName,
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration":    stats.WaitDuration.String(),
	}
}
