package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"vaxledger/internal/ledger/tracer"
)

func TestNoopTracerReturnsContextUnchanged(t *testing.T) {
	ctx := context.Background()
	newCtx, span := tracer.NewNoop().Start(ctx, tracer.SpanValidate, tracer.String(tracer.AttrArea, "Garivas"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Bool("accepted", true))
	span.AddEvent(tracer.EventAuditEmitted, tracer.Int64("count", 1))
	span.End(errors.New("rejected"))
}

func TestOTelTracerWithInjectedProvider(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	ctx, span := tr.Start(context.Background(), tracer.SpanCertify,
		tracer.String(tracer.AttrCenterID, "1234567890"),
		tracer.Int64("attempt", 1),
	)
	require.NotNil(t, ctx)
	span.SetAttributes(tracer.String(tracer.AttrToken, "0xabc"))
	span.End(nil)
}

func TestOTelTracerDefaultsToGlobalProvider(t *testing.T) {
	_, span := tracer.NewOTel().Start(context.Background(), tracer.SpanGetRecord)
	span.End(errors.New("vaccination is not registered"))
}
