package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxledger/internal/center/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
	"vaxledger/pkg/testutil"
)

func newCenter(t *testing.T, centerID uint64) *models.Center {
	t.Helper()
	c, err := models.NewCenter(0, "Municipal Vac #12", "0xA", time.Now())
	require.NoError(t, err)
	c.ID = id.CenterID(centerID)
	return c
}

func TestCreateAndFind(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	c := newCenter(t, 1234567890)
	require.NoError(t, store.Create(ctx, c))

	found, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, found.Name)
	assert.Equal(t, c.Address, found.Address)

	found.Name = "mutated"
	again, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Municipal Vac #12", again.Name, "store hands out copies")
}

func TestCreateDuplicateIsAlreadyUsed(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newCenter(t, 1)))
	err := store.Create(ctx, newCenter(t, 1))
	assert.True(t, errors.Is(err, sentinel.ErrAlreadyUsed))
}

func TestFindMissingIsNotFound(t *testing.T) {
	_, err := NewInMemory().FindByID(context.Background(), 666)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestConcurrentCreateSameID(t *testing.T) {
	store := NewInMemory()
	c := newCenter(t, 42)
	result := testutil.RunConcurrent(50, func(int) error {
		return store.Create(context.Background(), c)
	})
	assert.Equal(t, int32(1), result.Successes)
	assert.Equal(t, int32(49), result.Conflicts)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
