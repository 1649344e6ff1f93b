package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"

	"storefront/internal/domain"
	sqldb "storefront/pkg/database"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/tracing"
)

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opInsert:
		return "insert"
	case opUpdate:
		return "update"
	case opDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type pendingOp struct {
	kind  opKind
	model domain.Model
}

// Session is a unit-of-work handle bound to one pooled connection.
//
// Writes staged with Add and Delete are flushed in program order by Commit.
// Reads never flush staged writes. A transaction is opened lazily by the first
// statement and ends with Commit, Rollback or Close. After Commit only the
// generated primary keys are copied back into the models; nothing is re-read.
//
// A Session is not safe for concurrent use.
type Session struct {
	conn     *sqlx.Conn
	tx       *sqlx.Tx
	pending  []pendingOp
	inserted []domain.Model
	closed   bool
	echo     bool
	logger   logger.Logger
	release  func()
}

var _ domain.Session = (*Session)(nil)

func newSession(conn *sqlx.Conn, echo bool, logger logger.Logger, release func()) *Session {
	return &Session{
		conn:    conn,
		echo:    echo,
		logger:  logger,
		release: release,
	}
}

// Add stages m for insertion when its key is zero, otherwise for a full-row update.
func (s *Session) Add(m domain.Model) error {
	if s.closed {
		return domain.ErrSessionClosed
	}

	kind := opUpdate
	if *m.Key() == 0 {
		kind = opInsert
	}
	s.pending = append(s.pending, pendingOp{kind: kind, model: m})
	return nil
}

func (s *Session) Delete(m domain.Model) error {
	if s.closed {
		return domain.ErrSessionClosed
	}
	if *m.Key() == 0 {
		return fmt.Errorf("kaydedilmemiş %s silinemez", m.Table().Resource)
	}

	s.pending = append(s.pending, pendingOp{kind: opDelete, model: m})
	return nil
}

// Get loads the row with the given primary key into m. It reports false when no row exists.
func (s *Session) Get(ctx context.Context, m domain.Model, id int64) (bool, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return false, err
	}

	t := m.Table()
	query := tx.Rebind(fmt.Sprintf("SELECT id, %s FROM %s WHERE id = ?", strings.Join(t.Columns, ", "), t.Name))
	s.echoStatement(query, id)

	start := time.Now()
	err = tx.QueryRowxContext(ctx, query, id).Scan(m.Targets()...)
	metrics.RecordDatabaseOperation("get", t.Name, time.Since(start))

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, sqldb.Classify(err)
	}
	return true, nil
}

// One scans a single row into dest. It reports false when the query returned no rows.
func (s *Session) One(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return false, err
	}

	query = tx.Rebind(query)
	s.echoStatement(query, args...)

	start := time.Now()
	err = tx.GetContext(ctx, dest, query, args...)
	metrics.RecordDatabaseOperation("one", "query", time.Since(start))

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, sqldb.Classify(err)
	}
	return true, nil
}

func (s *Session) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	query = tx.Rebind(query)
	s.echoStatement(query, args...)

	start := time.Now()
	err = tx.SelectContext(ctx, dest, query, args...)
	metrics.RecordDatabaseOperation("select", "query", time.Since(start))

	return sqldb.Classify(err)
}

// Execute runs an arbitrary query inside the session transaction and returns
// a cursor over its rows. The caller closes the rows before the next statement.
func (s *Session) Execute(ctx context.Context, query string, args ...interface{}) (domain.Rows, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}

	query = tx.Rebind(query)
	s.echoStatement(query, args...)

	start := time.Now()
	rows, err := tx.QueryxContext(ctx, query, args...)
	metrics.RecordDatabaseOperation("execute", "query", time.Since(start))
	if err != nil {
		return nil, sqldb.Classify(err)
	}
	return rows, nil
}

// Commit flushes staged writes in the order they were staged and commits the
// transaction. On any failure the transaction is rolled back, staged work is
// discarded and keys assigned during the failed flush are reset to zero.
func (s *Session) Commit(ctx context.Context) error {
	if s.closed {
		return domain.ErrSessionClosed
	}
	if s.tx == nil && len(s.pending) == 0 {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "session.commit", attribute.Int("session.pending", len(s.pending)))
	defer span.End()

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	for _, op := range s.pending {
		if err := s.flush(ctx, tx, op); err != nil {
			s.discard()
			metrics.RecordCommit(false)
			s.logger.ErrorContext(ctx, "Oturum yazımı başarısız", map[string]interface{}{
				"operation": op.kind.String(),
				"table":     op.model.Table().Name,
				"error":     err.Error(),
			})
			span.RecordError(err)
			return err
		}
	}

	s.echoStatement("COMMIT")
	if err := tx.Commit(); err != nil {
		s.tx = nil
		s.discard()
		metrics.RecordCommit(false)
		span.RecordError(err)
		return sqldb.Classify(err)
	}

	s.tx = nil
	s.pending = nil
	s.inserted = nil
	metrics.RecordCommit(true)
	return nil
}

// Rollback discards the open transaction and every staged write.
func (s *Session) Rollback() error {
	if s.closed {
		return domain.ErrSessionClosed
	}
	s.discard()
	return nil
}

// Close rolls back uncommitted work and returns the connection to the pool.
// Only the first call releases; later calls are no-ops.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.discard()
	s.closed = true

	err := s.conn.Close()
	if s.release != nil {
		s.release()
	}
	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("oturum bağlantısı bırakılamadı: %w", err)
	}
	return nil
}

func (s *Session) Closed() bool {
	return s.closed
}

func (s *Session) begin(ctx context.Context) (*sqlx.Tx, error) {
	if s.closed {
		return nil, domain.ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}

	s.echoStatement("BEGIN")
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if busy := sqldb.Classify(err); errors.Is(busy, domain.ErrStorageBusy) {
			return nil, busy
		}
		return nil, &domain.ConnectionError{Err: err}
	}
	s.tx = tx
	return tx, nil
}

func (s *Session) flush(ctx context.Context, tx *sqlx.Tx, op pendingOp) error {
	t := op.model.Table()
	start := time.Now()
	defer func() {
		metrics.RecordDatabaseOperation(op.kind.String(), t.Name, time.Since(start))
	}()

	switch op.kind {
	case opInsert:
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
		query := tx.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
			t.Name, strings.Join(t.Columns, ", "), placeholders))
		args := op.model.Values()
		s.echoStatement(query, args...)

		var id int64
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return sqldb.Classify(err)
		}
		*op.model.Key() = id
		s.inserted = append(s.inserted, op.model)
		return nil

	case opUpdate:
		assignments := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			assignments[i] = col + " = ?"
		}
		query := tx.Rebind(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.Name, strings.Join(assignments, ", ")))
		args := append(op.model.Values(), *op.model.Key())
		s.echoStatement(query, args...)

		return s.execAffecting(ctx, tx, op.model, query, args...)

	case opDelete:
		query := tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.Name))
		s.echoStatement(query, *op.model.Key())

		return s.execAffecting(ctx, tx, op.model, query, *op.model.Key())
	}

	return fmt.Errorf("bilinmeyen oturum operasyonu: %d", op.kind)
}

// execAffecting runs a statement that must touch the model's row.
func (s *Session) execAffecting(ctx context.Context, tx *sqlx.Tx, m domain.Model, query string, args ...interface{}) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return sqldb.Classify(err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return &domain.NotFoundError{Resource: m.Table().Resource, ID: *m.Key()}
	}
	return nil
}

func (s *Session) discard() {
	if s.tx != nil {
		s.echoStatement("ROLLBACK")
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Warn("Transaction geri alınamadı", map[string]interface{}{"error": err.Error()})
		}
		s.tx = nil
	}

	for _, m := range s.inserted {
		*m.Key() = 0
	}
	s.inserted = nil
	s.pending = nil
}

func (s *Session) echoStatement(query string, args ...interface{}) {
	if !s.echo {
		return
	}
	s.logger.Info("SQL", map[string]interface{}{
		"query": query,
		"args":  args,
	})
}
