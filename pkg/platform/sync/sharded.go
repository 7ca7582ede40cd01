// Package sync holds concurrency helpers for stores that lack native
// conditional writes.
package sync

import (
	"hash/fnv"
	"sync"
)

const shardCount = 32

// KeyedMutex serializes work per key by hashing keys onto a fixed set of
// mutexes. Distinct keys may share a shard; the same key always does.
type KeyedMutex struct {
	shards [shardCount]sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

// WithLock runs fn while holding the shard lock for key.
func (m *KeyedMutex) WithLock(key string, fn func() error) error {
	mu := &m.shards[shardFor(key)]
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func shardFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % shardCount
}
