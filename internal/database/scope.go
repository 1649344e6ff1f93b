package database

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// Scope owns at most one session for the lifetime of a request. The session is
// acquired on first use so requests that never touch storage hold no connection.
type Scope struct {
	provider *Provider

	mu       sync.Mutex
	session  *Session
	err      error
	released bool
}

func NewScope(p *Provider) *Scope {
	return &Scope{provider: p}
}

// Session returns the scope's session, acquiring it on the first call. Every
// later call returns the same session, or the same acquire error. Once the
// session has been closed, by Release or directly, ErrSessionClosed is returned.
func (sc *Scope) Session(ctx context.Context) (*Session, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.released || (sc.session != nil && sc.session.Closed()) {
		return nil, domain.ErrSessionClosed
	}
	if sc.session != nil || sc.err != nil {
		return sc.session, sc.err
	}

	sc.session, sc.err = sc.provider.Acquire(ctx)
	return sc.session, sc.err
}

// Acquired reports whether a session was ever handed out.
func (sc *Scope) Acquired() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.session != nil
}

// Release closes the session, if any. Safe to call more than once.
func (sc *Scope) Release() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.released {
		return nil
	}
	sc.released = true

	if sc.session == nil {
		return nil
	}
	return sc.session.Close()
}

type scopeKey struct{}

func WithScope(ctx context.Context, sc *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, sc)
}

func ScopeFrom(ctx context.Context) (*Scope, bool) {
	sc, ok := ctx.Value(scopeKey{}).(*Scope)
	return sc, ok
}

// SessionFrom resolves the request session from ctx.
func SessionFrom(ctx context.Context) (*Session, error) {
	sc, ok := ScopeFrom(ctx)
	if !ok {
		return nil, domain.ErrNoSession
	}
	return sc.Session(ctx)
}
