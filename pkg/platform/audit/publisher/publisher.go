package publisher

import (
	"context"
	"log/slog"
	"sync"

	dErrors "vaxledger/pkg/domain-errors"
	audit "vaxledger/pkg/platform/audit"
	"vaxledger/pkg/requestcontext"
)

// Publisher stamps audit events and appends them to a store. Synchronous
// by default, so an outbox-backed store shares the caller's transaction.
type Publisher struct {
	store   audit.Store
	events  chan audit.Event
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *Metrics
	async   bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Async events are persisted outside of the caller's transaction.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithPublisherMetrics(m *Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func categoryOf(action string) audit.Category {
	return audit.AuditEvent(action).Category()
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		err := p.store.Append(context.Background(), event)
		p.metrics.observe(event.Action, err)
		if err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"category", categoryOf(event.Action),
				"subject", event.Subject,
			)
		}
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit fills Timestamp and RequestID from ctx when unset.
func (p *Publisher) Emit(ctx context.Context, base audit.Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = requestcontext.Now(ctx)
	}
	if base.RequestID == "" {
		base.RequestID = requestcontext.RequestID(ctx)
	}
	if p.async {
		select {
		case p.events <- base:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			p.metrics.observe(base.Action, errBufferFull)
			if p.logger != nil {
				p.logger.Warn("audit buffer full, event dropped",
					"action", base.Action,
					"subject", base.Subject,
				)
			}
			return errBufferFull
		}
	}
	err := p.store.Append(ctx, base)
	p.metrics.observe(base.Action, err)
	return err
}

var errBufferFull = dErrors.New(dErrors.CodeInternal, "audit buffer full")

var _ audit.Emitter = (*Publisher)(nil)
