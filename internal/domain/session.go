package domain

import "context"

// Session is the unit-of-work handle repositories operate on. One session
// belongs to exactly one request; implementations are not safe for concurrent use.
type Session interface {
	Add(m Model) error
	Delete(m Model) error
	Get(ctx context.Context, m Model, id int64) (bool, error)
	One(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error)
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Execute(ctx context.Context, query string, args ...interface{}) (Rows, error)
	Commit(ctx context.Context) error
}

// Rows is a forward-only result cursor. Callers must Close it.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	StructScan(dest interface{}) error
	Err() error
	Close() error
}
