// Package tracer is the ledger's tracing seam. Services depend on the small
// Tracer interface; production wires OpenTelemetry, tests use the no-op.
package tracer

import "context"

// Span must be ended exactly once, usually via defer.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names.
const (
	SpanCertify      = "ledger.certify"
	SpanValidate     = "ledger.validate"
	SpanGetRecord    = "ledger.get_record"
	SpanCenterLookup = "ledger.center_lookup"
	SpanRuleEvaluate = "ledger.rule_evaluate"
)

// Attribute keys. Person identifiers are never attached to spans.
const (
	AttrCenterID = "center.id"
	AttrArea     = "rule.area"
	AttrVerdict  = "rule.verdict"
	AttrDecision = "validation.decision"
	AttrReason   = "validation.reason"
	AttrToken    = "proof_token"
)

// Event names.
const (
	EventAuditEmitted = "audit.emitted"
)
