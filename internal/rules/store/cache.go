package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"vaxledger/internal/rules/models"
	rulesmetrics "vaxledger/internal/rules/metrics"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/circuit"
	platformsync "vaxledger/pkg/platform/sync"
	txcontext "vaxledger/pkg/platform/tx"
)

const (
	ruleKeyPrefix        = "rule:"
	defaultCacheTTL      = 5 * time.Minute
	defaultProbeInterval = 5 * time.Second
	defaultLoadTimeout   = 5 * time.Second
)

// Store is the persistence contract shared by every rule backend.
type Store interface {
	Save(ctx context.Context, rule *models.Rule) error
	FindByArea(ctx context.Context, area id.Area) (*models.Rule, error)
}

// CachedStore fronts a Store with Redis. Concurrent misses for the same area
// share one source read. When Redis keeps failing the circuit opens and reads
// go straight to the source, with one probe per probe interval, until Redis
// recovers. Cached entries are never older than the TTL.
//
// A save drops the cached copy only after its transaction commits. Every
// invalidation bumps the area's epoch, and a fill whose source read began in
// an older epoch is discarded. An area whose invalidation failed is read from
// the source until a fill overwrites the stale entry.
type CachedStore struct {
	next          Store
	client        redis.Cmdable
	ttl           time.Duration
	probeInterval time.Duration
	loadTimeout   time.Duration
	lastProbe     atomic.Int64
	group         singleflight.Group
	breaker       *circuit.Breaker
	metrics       *rulesmetrics.Metrics
	logger        *slog.Logger

	locks  *platformsync.KeyedMutex
	mu     sync.Mutex
	epochs map[id.Area]uint64
	dirty  map[id.Area]struct{}
}

type CacheOption func(*CachedStore)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedStore) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithProbeInterval(d time.Duration) CacheOption {
	return func(c *CachedStore) {
		if d > 0 {
			c.probeInterval = d
		}
	}
}

func WithLoadTimeout(d time.Duration) CacheOption {
	return func(c *CachedStore) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

func WithCacheMetrics(m *rulesmetrics.Metrics) CacheOption {
	return func(c *CachedStore) {
		c.metrics = m
	}
}

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedStore) {
		c.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) CacheOption {
	return func(c *CachedStore) {
		c.breaker = b
	}
}

func NewCached(next Store, client redis.Cmdable, opts ...CacheOption) *CachedStore {
	c := &CachedStore{
		next:          next,
		client:        client,
		ttl:           defaultCacheTTL,
		probeInterval: defaultProbeInterval,
		loadTimeout:   defaultLoadTimeout,
		breaker:       circuit.New("rule_cache"),
		locks:         platformsync.NewKeyedMutex(),
		epochs:        make(map[id.Area]uint64),
		dirty:         make(map[id.Area]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func ruleKey(area id.Area) string {
	return ruleKeyPrefix + area.String()
}

// Save writes through to the source. The cached copy is dropped once the
// surrounding transaction commits.
func (c *CachedStore) Save(ctx context.Context, rule *models.Rule) error {
	if err := c.next.Save(ctx, rule); err != nil {
		return err
	}
	area := rule.Area
	txcontext.AfterCommit(ctx, func(ctx context.Context) {
		if err := c.Invalidate(ctx, area); err != nil && c.logger != nil {
			c.logger.WarnContext(ctx, "rule cache invalidation failed; area reads bypass cache",
				"area", area.String(),
				"error", err,
			)
		}
	})
	return nil
}

func (c *CachedStore) FindByArea(ctx context.Context, area id.Area) (*models.Rule, error) {
	// Reads inside a transaction must see its own writes and must not leak
	// them into the cache.
	if _, inTx := txcontext.From(ctx); inTx {
		return c.next.FindByArea(ctx, area)
	}
	if c.skipCache() {
		c.observeBypass()
		return c.loadFromSource(ctx, area)
	}
	if c.isDirty(area) {
		c.observeLookup("dirty")
		return c.loadFromSource(ctx, area)
	}

	data, err := c.client.Get(ctx, ruleKey(area)).Bytes()
	switch {
	case err == nil:
		c.record(ctx, nil)
		if rule, decodeErr := decodeRule(data); decodeErr == nil {
			c.observeLookup("hit")
			return rule, nil
		}
	case errors.Is(err, redis.Nil):
		c.record(ctx, nil)
		c.observeLookup("miss")
	default:
		c.record(ctx, err)
		c.observeLookup("error")
	}

	return c.loadFromSource(ctx, area)
}

// loadFromSource shares one source read per area. The shared read is
// detached from any single caller's cancellation; each caller still stops
// waiting when its own ctx ends.
func (c *CachedStore) loadFromSource(ctx context.Context, area id.Area) (*models.Rule, error) {
	ch := c.group.DoChan(area.String(), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		epoch := c.epoch(area)
		rule, err := c.next.FindByArea(loadCtx, area)
		if err != nil {
			return nil, err
		}
		c.fill(loadCtx, rule, epoch)
		return rule, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Rule).Clone(), nil
	}
}

// fill caches rule unless the area was invalidated after the source read began.
func (c *CachedStore) fill(ctx context.Context, rule *models.Rule, epoch uint64) {
	if c.breaker.IsOpen() {
		return
	}
	data, err := encodeRule(rule)
	if err != nil {
		return
	}
	_ = c.locks.WithLock(ruleKey(rule.Area), func() error {
		if c.epoch(rule.Area) != epoch {
			return nil
		}
		err := c.client.Set(ctx, ruleKey(rule.Area), data, c.ttl).Err()
		c.record(ctx, err)
		if err == nil {
			c.clearDirty(rule.Area)
		}
		return nil
	})
}

// Invalidate removes a cached rule and discards fills from reads already in
// flight. On failure the area is read from the source until a later fill
// replaces the entry.
func (c *CachedStore) Invalidate(ctx context.Context, area id.Area) error {
	key := ruleKey(area)
	return c.locks.WithLock(key, func() error {
		c.bumpEpoch(area)
		c.group.Forget(area.String())
		err := c.client.Del(ctx, key).Err()
		c.record(ctx, err)
		if err != nil {
			c.markDirty(area)
			return fmt.Errorf("invalidate rule %s: %w", area, err)
		}
		return nil
	})
}

func (c *CachedStore) epoch(area id.Area) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epochs[area]
}

func (c *CachedStore) bumpEpoch(area id.Area) {
	c.mu.Lock()
	c.epochs[area]++
	c.mu.Unlock()
}

func (c *CachedStore) isDirty(area id.Area) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.dirty[area]
	return ok
}

func (c *CachedStore) markDirty(area id.Area) {
	c.mu.Lock()
	c.dirty[area] = struct{}{}
	c.mu.Unlock()
}

func (c *CachedStore) clearDirty(area id.Area) {
	c.mu.Lock()
	delete(c.dirty, area)
	c.mu.Unlock()
}

// skipCache reports whether the read should bypass Redis. While the circuit
// is open one caller per probe interval is let through.
func (c *CachedStore) skipCache() bool {
	if !c.breaker.IsOpen() {
		return false
	}
	now := time.Now().UnixNano()
	last := c.lastProbe.Load()
	if now-last < int64(c.probeInterval) {
		return true
	}
	return !c.lastProbe.CompareAndSwap(last, now)
}

func (c *CachedStore) record(ctx context.Context, err error) {
	transition := c.breaker.Record(err)
	if transition == circuit.Opened {
		c.lastProbe.Store(time.Now().UnixNano())
	}
	if c.logger == nil {
		return
	}
	switch transition {
	case circuit.Opened:
		c.logger.WarnContext(ctx, "rule cache circuit opened", "circuit", c.breaker.Name(), "error", err)
	case circuit.Closed:
		c.logger.InfoContext(ctx, "rule cache circuit closed", "circuit", c.breaker.Name())
	}
}

func (c *CachedStore) observeLookup(result string) {
	if c.metrics != nil {
		c.metrics.ObserveCacheLookup(result)
	}
}

func (c *CachedStore) observeBypass() {
	if c.metrics != nil {
		c.metrics.IncrementBypassed()
	}
}
