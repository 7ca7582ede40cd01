package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "vaxledger/pkg/platform/audit"
	"vaxledger/pkg/platform/audit/store/memory"
	"vaxledger/pkg/requestcontext"
)

type failingStore struct {
	err error
}

func (s *failingStore) Append(_ context.Context, _ audit.Event) error {
	return s.err
}

func TestPublisher_EmitStoresEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), audit.Event{
		Action:  string(audit.EventCenterRegistered),
		Subject: "1234567890",
	})
	require.NoError(t, err)

	events, err := store.ListBySubject(context.Background(), "1234567890")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventCenterRegistered), events[0].Action)
}

func TestPublisher_EnrichesFromContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	pinned := time.Date(2021, 1, 19, 11, 31, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), pinned)
	ctx = requestcontext.WithRequestID(ctx, "req-1")

	require.NoError(t, pub.Emit(ctx, audit.Event{Action: string(audit.EventVaccinationValidated), Subject: "0x1"}))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, pinned, events[0].Timestamp)
	assert.Equal(t, "req-1", events[0].RequestID)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	custom := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: "x", Subject: "s", Timestamp: custom}))

	events, err := store.ListBySubject(context.Background(), "s")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, custom, events[0].Timestamp)
}

func TestPublisher_EmitReturnsError(t *testing.T) {
	storeErr := errors.New("append failed")
	pub := NewPublisher(&failingStore{err: storeErr})

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventRuleRegistered)})
	require.ErrorIs(t, err, storeErr)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(8))

	for range 5 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: "x", Subject: "async"}))
	}
	pub.Close()

	events, err := store.ListBySubject(context.Background(), "async")
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestPublisher_CountsByCategory(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	pub := NewPublisher(memory.NewInMemoryStore(), WithPublisherMetrics(m))

	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: string(audit.EventVaccinationCertified)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: string(audit.EventCertificationRejected)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: string(audit.EventVaccinationValidated)}))

	assert.Equal(t, 1.0, promtest.ToFloat64(m.Emitted.WithLabelValues(string(audit.CategoryCompliance))))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Emitted.WithLabelValues(string(audit.CategorySecurity))))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Emitted.WithLabelValues(string(audit.CategoryOperations))))

	failing := NewPublisher(&failingStore{err: errors.New("down")}, WithPublisherMetrics(m))
	require.Error(t, failing.Emit(context.Background(), audit.Event{Action: string(audit.EventRuleRegistered)}))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Failed.WithLabelValues(string(audit.CategoryCompliance))))
}
