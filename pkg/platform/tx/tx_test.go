package tx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vaxledger/pkg/domain-errors"
)

func TestMemoryRunInTx(t *testing.T) {
	t.Run("serializes concurrent callers", func(t *testing.T) {
		runner := NewMemory()
		var (
			wg      sync.WaitGroup
			active  int
			maxSeen int
			mu      sync.Mutex
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = runner.RunInTx(context.Background(), func(ctx context.Context) error {
					mu.Lock()
					active++
					if active > maxSeen {
						maxSeen = active
					}
					mu.Unlock()

					mu.Lock()
					active--
					mu.Unlock()
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
	})

	t.Run("cancelled context is a timeout", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewMemory().RunInTx(ctx, func(context.Context) error { return nil })
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	t.Run("propagates callback error", func(t *testing.T) {
		boom := errors.New("boom")
		err := NewMemory().RunInTx(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("after-commit hooks run once fn returns, in order", func(t *testing.T) {
		var seen []string
		err := NewMemory().RunInTx(context.Background(), func(ctx context.Context) error {
			AfterCommit(ctx, func(context.Context) { seen = append(seen, "first") })
			AfterCommit(ctx, func(context.Context) { seen = append(seen, "second") })
			assert.Empty(t, seen)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, seen)
	})

	t.Run("after-commit hooks are dropped on error", func(t *testing.T) {
		ran := false
		err := NewMemory().RunInTx(context.Background(), func(ctx context.Context) error {
			AfterCommit(ctx, func(context.Context) { ran = true })
			return errors.New("boom")
		})
		require.Error(t, err)
		assert.False(t, ran)
	})
}

func TestAfterCommitOutsideTransactionRunsNow(t *testing.T) {
	ran := false
	AfterCommit(context.Background(), func(context.Context) { ran = true })
	assert.True(t, ran)
}

func TestPostgresRunInTx(t *testing.T) {
	t.Run("commits on success and exposes tx", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		err = NewPostgres(db).RunInTx(context.Background(), func(ctx context.Context) error {
			_, ok := From(ctx)
			assert.True(t, ok)
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("after-commit hooks wait for commit and see no tx", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		var inTx, ran bool
		err = NewPostgres(db).RunInTx(context.Background(), func(ctx context.Context) error {
			AfterCommit(ctx, func(hookCtx context.Context) {
				ran = true
				_, inTx = From(hookCtx)
			})
			assert.False(t, ran)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)
		assert.False(t, inTx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("after-commit hooks are dropped when commit fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		ran := false
		err = NewPostgres(db).RunInTx(context.Background(), func(ctx context.Context) error {
			AfterCommit(ctx, func(context.Context) { ran = true })
			return nil
		})
		require.Error(t, err)
		assert.False(t, ran)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = NewPostgres(db).RunInTx(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("executor falls back to db", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		assert.Equal(t, DBTX(db), Executor(context.Background(), db))
	})
}
