package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rulesmetrics "vaxledger/internal/rules/metrics"
	"vaxledger/internal/rules/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/circuit"
	txcontext "vaxledger/pkg/platform/tx"
)

// mapRedis implements the Get, Set and Del calls CachedStore makes.
type mapRedis struct {
	redis.Cmdable
	mu      sync.Mutex
	data    map[string][]byte
	failDel bool
}

func newMapRedis() *mapRedis {
	return &mapRedis{data: make(map[string][]byte)}
}

func (m *mapRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewStringCmd(ctx, "get", key)
	data, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(data))
	return cmd
}

func (m *mapRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewStatusCmd(ctx, "set", key)
	m.data[key] = value.([]byte)
	cmd.SetVal("OK")
	return cmd
}

func (m *mapRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewIntCmd(ctx, "del")
	if m.failDel {
		cmd.SetErr(errors.New("connection reset"))
		return cmd
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (m *mapRedis) cached(t *testing.T, area id.Area) (*models.Rule, bool) {
	t.Helper()
	m.mu.Lock()
	data, ok := m.data[ruleKey(area)]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	rule, err := decodeRule(data)
	require.NoError(t, err)
	return rule, true
}

// stagedStore applies writes only when the surrounding transaction commits,
// like a Postgres row that other sessions cannot see until then.
type stagedStore struct {
	Store
}

func (s stagedStore) Save(ctx context.Context, rule *models.Rule) error {
	txcontext.AfterCommit(ctx, func(ctx context.Context) {
		_ = s.Store.Save(ctx, rule)
	})
	return nil
}

func TestCachedStoreDropsEntryFilledBeforeCommit(t *testing.T) {
	ctx := context.Background()
	source := stagedStore{Store: NewInMemory()}
	require.NoError(t, source.Store.Save(ctx, garivasRule(t, coronaVac)))
	rdb := newMapRedis()
	cached := NewCached(source, rdb)

	err := txcontext.NewMemory().RunInTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, cached.Save(txCtx, garivasRule(t, sputnikVac)))

		// another request reads while the replacement is uncommitted
		rule, err := cached.FindByArea(ctx, "Garivas")
		require.NoError(t, err)
		assert.Equal(t, []models.Vaccine{coronaVac}, rule.VaccineList())
		_, filled := rdb.cached(t, "Garivas")
		assert.True(t, filled)
		return nil
	})
	require.NoError(t, err)

	_, stillCached := rdb.cached(t, "Garivas")
	assert.False(t, stillCached, "commit must drop the entry filled from the old row")

	rule, err := cached.FindByArea(ctx, "Garivas")
	require.NoError(t, err)
	assert.Equal(t, []models.Vaccine{sputnikVac}, rule.VaccineList())
}

func TestCachedStoreKeepsEntryWhenTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	source := stagedStore{Store: NewInMemory()}
	require.NoError(t, source.Store.Save(ctx, garivasRule(t, coronaVac)))
	rdb := newMapRedis()
	cached := NewCached(source, rdb)
	_, err := cached.FindByArea(ctx, "Garivas")
	require.NoError(t, err)

	boom := errors.New("audit append failed")
	err = txcontext.NewMemory().RunInTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, cached.Save(txCtx, garivasRule(t, sputnikVac)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	rule, ok := rdb.cached(t, "Garivas")
	require.True(t, ok)
	assert.Equal(t, []models.Vaccine{coronaVac}, rule.VaccineList())
}

// racingStore runs during once, while a source read is in flight.
type racingStore struct {
	Store
	during func()
}

func (s *racingStore) FindByArea(ctx context.Context, area id.Area) (*models.Rule, error) {
	rule, err := s.Store.FindByArea(ctx, area)
	if s.during != nil {
		during := s.during
		s.during = nil
		during()
	}
	return rule, err
}

func TestCachedStoreDiscardsFillOlderThanInvalidation(t *testing.T) {
	ctx := context.Background()
	source := &racingStore{Store: NewInMemory()}
	require.NoError(t, source.Store.Save(ctx, garivasRule(t, coronaVac)))
	rdb := newMapRedis()
	cached := NewCached(source, rdb)

	replacement := garivasRule(t, sputnikVac)
	source.during = func() {
		assert.NoError(t, source.Store.Save(ctx, replacement))
		assert.NoError(t, cached.Invalidate(ctx, "Garivas"))
	}

	rule, err := cached.FindByArea(ctx, "Garivas")
	require.NoError(t, err)
	assert.Equal(t, []models.Vaccine{coronaVac}, rule.VaccineList())
	_, filled := rdb.cached(t, "Garivas")
	assert.False(t, filled)

	rule, err = cached.FindByArea(ctx, "Garivas")
	require.NoError(t, err)
	assert.Equal(t, []models.Vaccine{sputnikVac}, rule.VaccineList())
}

func TestCachedStoreBypassesStaleEntryAfterFailedInvalidation(t *testing.T) {
	ctx := context.Background()
	source := NewInMemory()
	require.NoError(t, source.Save(ctx, garivasRule(t, coronaVac)))
	rdb := newMapRedis()
	metrics := rulesmetrics.New(prometheus.NewRegistry())
	cached := NewCached(source, rdb,
		WithBreaker(circuit.New("rule_cache", circuit.WithFailureThreshold(5))),
		WithCacheMetrics(metrics),
	)
	_, err := cached.FindByArea(ctx, "Garivas")
	require.NoError(t, err)

	rdb.failDel = true
	require.NoError(t, cached.Save(ctx, garivasRule(t, sputnikVac)))
	assert.True(t, cached.isDirty("Garivas"))

	rule, err := cached.FindByArea(ctx, "Garivas")
	require.NoError(t, err)
	assert.Equal(t, []models.Vaccine{sputnikVac}, rule.VaccineList())
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.CacheLookups.WithLabelValues("dirty")))

	// the source read overwrote the stale entry, so the cache is trusted again
	assert.False(t, cached.isDirty("Garivas"))
	cachedRule, ok := rdb.cached(t, "Garivas")
	require.True(t, ok)
	assert.Equal(t, []models.Vaccine{sputnikVac}, cachedRule.VaccineList())
}

func TestCachedStoreInvalidateReportsFailure(t *testing.T) {
	rdb := newMapRedis()
	rdb.failDel = true
	cached := NewCached(NewInMemory(), rdb)
	assert.Error(t, cached.Invalidate(context.Background(), "Garivas"))
}

func TestCachedStoreReadsInsideTransactionSkipCache(t *testing.T) {
	ctx := context.Background()
	source := NewInMemory()
	require.NoError(t, source.Save(ctx, garivasRule(t, coronaVac)))
	rdb := newMapRedis()
	cached := NewCached(source, rdb)

	txCtx := txcontext.WithTx(ctx, &sql.Tx{})
	rule, err := cached.FindByArea(txCtx, "Garivas")
	require.NoError(t, err)
	assert.True(t, rule.Accepts(coronaVac))
	_, filled := rdb.cached(t, "Garivas")
	assert.False(t, filled)
}

// gatedStore blocks source reads until release is closed.
type gatedStore struct {
	Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) FindByArea(ctx context.Context, area id.Area) (*models.Rule, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.Store.FindByArea(ctx, area)
}

func TestCachedStoreSharedLoadOutlivesCancelledCaller(t *testing.T) {
	ctx := context.Background()
	source := &gatedStore{
		Store:   NewInMemory(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	require.NoError(t, source.Store.Save(ctx, garivasRule(t, coronaVac)))
	cached := NewCached(source, newMapRedis())

	firstCtx, cancel := context.WithCancel(ctx)
	firstErr := make(chan error, 1)
	go func() {
		_, err := cached.FindByArea(firstCtx, "Garivas")
		firstErr <- err
	}()
	<-source.entered

	type result struct {
		rule *models.Rule
		err  error
	}
	second := make(chan result, 1)
	go func() {
		rule, err := cached.FindByArea(ctx, "Garivas")
		second <- result{rule, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(source.release)
	res := <-second
	require.NoError(t, res.err)
	assert.True(t, res.rule.Accepts(coronaVac))
}
