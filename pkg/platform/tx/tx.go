// Package tx carries an active *sql.Tx through context and provides the two
// transaction runners used by services: a database/sql one for Postgres-backed
// stores and a mutex one for in-process stores.
package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "vaxledger/pkg/domain-errors"
)

// DefaultTimeout bounds a transaction when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

type contextKeyTx struct{}

type contextKeyHooks struct{}

// commitHooks collects callbacks registered during a transaction.
type commitHooks struct {
	mu   sync.Mutex
	fns  []func(ctx context.Context)
	done bool
}

func withCommitHooks(ctx context.Context) (context.Context, *commitHooks) {
	h := &commitHooks{}
	return context.WithValue(ctx, contextKeyHooks{}, h), h
}

// run invokes the hooks in registration order. Hooks registered after run
// execute immediately.
func (h *commitHooks) run(ctx context.Context) {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.done = true
	h.mu.Unlock()
	for _, fn := range fns {
		fn(ctx)
	}
}

// AfterCommit schedules fn to run once the transaction carried by ctx has
// committed. It is dropped on rollback. Outside a transaction fn runs now.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	if h, ok := ctx.Value(contextKeyHooks{}).(*commitHooks); ok {
		h.mu.Lock()
		if !h.done {
			h.fns = append(h.fns, fn)
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()
	}
	fn(ctx)
}

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, contextKeyTx{}, tx)
}

func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(contextKeyTx{}).(*sql.Tx)
	return tx, ok && tx != nil
}

// Executor returns the transaction in ctx if there is one, else db.
func Executor(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Postgres runs fn inside a database/sql transaction. Nested calls reuse the
// outer transaction.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, timeout: DefaultTimeout}
}

func (t *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	ctx, cancel := withDefaultTimeout(ctx, t.timeout)
	defer cancel()
	ctx, hooks := withCommitHooks(ctx)

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	hooks.run(ctx)
	return nil
}

// Memory serializes mutations for in-process stores.
type Memory struct {
	mu      sync.Mutex
	timeout time.Duration
}

func NewMemory() *Memory {
	return &Memory{timeout: DefaultTimeout}
}

func (t *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	ctx, cancel := withDefaultTimeout(ctx, t.timeout)
	defer cancel()
	ctx, hooks := withCommitHooks(ctx)

	if err := t.locked(ctx, fn); err != nil {
		return err
	}
	hooks.run(ctx)
	return nil
}

func (t *Memory) locked(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
