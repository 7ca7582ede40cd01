package circuit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errRedisDown = errors.New("dial tcp: connection refused")

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("rule_cache", WithFailureThreshold(2), WithSuccessThreshold(2))

	assert.Equal(t, NoTransition, b.Record(errRedisDown))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Opened, b.Record(errRedisDown))
	assert.True(t, b.IsOpen())

	// further failures while open do not re-announce
	assert.Equal(t, NoTransition, b.Record(errRedisDown))
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	b := New("rule_cache", WithFailureThreshold(2))
	b.Record(errRedisDown)
	b.Record(nil)
	assert.Equal(t, NoTransition, b.Record(errRedisDown))
	assert.False(t, b.IsOpen())
}

func TestBreakerClosesAfterProbeSuccesses(t *testing.T) {
	b := New("rule_cache", WithFailureThreshold(1), WithSuccessThreshold(2))
	assert.Equal(t, Opened, b.Record(errRedisDown))

	assert.Equal(t, NoTransition, b.Record(nil))
	assert.Equal(t, Closed, b.Record(nil))
	assert.Equal(t, "closed", b.State().String())
}

func TestReset(t *testing.T) {
	b := New("rule_cache", WithFailureThreshold(1))
	b.Record(errRedisDown)
	b.Reset()
	assert.False(t, b.IsOpen())
}
