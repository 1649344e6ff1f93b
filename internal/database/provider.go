// Package database implements the per-request session lifecycle on top of the
// shared connection pool, plus schema migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

// Provider hands out sessions bound to connections of a shared pool.
type Provider struct {
	db     *sqlx.DB
	echo   bool
	logger logger.Logger
	open   int64
}

func NewProvider(db *sqlx.DB, echo bool, logger logger.Logger) *Provider {
	return &Provider{
		db:     db,
		echo:   echo,
		logger: logger,
	}
}

// Acquire reserves one pooled connection and wraps it in a fresh Session.
// The caller must Close the session exactly once.
func (p *Provider) Acquire(ctx context.Context) (*Session, error) {
	conn, err := p.db.Connx(ctx)
	if err != nil {
		return nil, p.acquireFailed(ctx, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, p.acquireFailed(ctx, err)
	}

	atomic.AddInt64(&p.open, 1)
	metrics.SessionOpened()

	return newSession(conn, p.echo, p.logger, p.released), nil
}

// Run executes fn with a dedicated session and always releases it afterwards.
// Work fn did not commit is rolled back.
func (p *Provider) Run(ctx context.Context, fn func(ctx context.Context, s *Session) error) (err error) {
	s, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(ctx, s)
}

// OpenSessions reports how many acquired sessions have not been closed yet.
func (p *Provider) OpenSessions() int64 {
	return atomic.LoadInt64(&p.open)
}

func (p *Provider) Stats() map[string]interface{} {
	stats := p.db.Stats()
	return map[string]interface{}{
		"open_sessions":    p.OpenSessions(),
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
	}
}

func (p *Provider) released() {
	atomic.AddInt64(&p.open, -1)
	metrics.SessionReleased()
}

func (p *Provider) acquireFailed(ctx context.Context, err error) error {
	metrics.RecordSessionAcquireFailure()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	p.logger.ErrorContext(ctx, "Veritabanı oturumu açılamadı", map[string]interface{}{"error": err.Error()})
	return &domain.ConnectionError{Err: fmt.Errorf("bağlantı alınamadı: %w", err)}
}
