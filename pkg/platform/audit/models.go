package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	// Subject is the entity the action is about: a center ID, an area or a
	// proof token.
	Subject string `json:"subject"`
	// Actor is the authenticated principal (caller address or admin actor).
	Actor     string `json:"actor,omitempty"`
	Area      string `json:"area,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Device    string `json:"device,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventCenterRegistered      AuditEvent = "center_registered"
	EventRuleRegistered        AuditEvent = "rule_registered"
	EventVaccinationCertified  AuditEvent = "vaccination_certified"
	EventVaccinationValidated  AuditEvent = "vaccination_validated"
	EventCertificationRejected AuditEvent = "certification_rejected"
)

// Validation decisions recorded on EventVaccinationValidated.
const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)

// Category routes events to retention classes.
type Category string

const (
	CategoryCompliance Category = "compliance"
	CategorySecurity   Category = "security"
	CategoryOperations Category = "operations"
)

// Category returns the retention class. Unknown events fall back to
// operations.
func (e AuditEvent) Category() Category {
	switch e {
	case EventCenterRegistered, EventRuleRegistered, EventVaccinationCertified:
		return CategoryCompliance
	case EventCertificationRejected:
		return CategorySecurity
	default:
		return CategoryOperations
	}
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
