package service

import (
	"context"
	"time"

	"vaxledger/internal/ledger/models"
	"vaxledger/internal/ledger/ports"
	"vaxledger/internal/ledger/tracer"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/audit"
)

// Validate checks a presented proof token for an area at a reference time.
// Checks run in a fixed order: registration, person, vaccine, age. A nil
// error means the credential is valid. The caller never affects the result.
func (s *Service) Validate(ctx context.Context, q models.ValidateQuery) (err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanValidate, tracer.String(tracer.AttrArea, q.Area.String()))
	defer func() { span.End(err) }()

	if err := q.Validate(); err != nil {
		return err
	}

	reason := s.decide(ctx, q)
	if reason != nil && !isRejection(reason) {
		return reason
	}

	decision := audit.DecisionAccepted
	reasonCode := "none"
	if reason != nil {
		decision = audit.DecisionRejected
		reasonCode = string(dErrors.CodeOf(reason))
	}
	span.SetAttributes(
		tracer.String(tracer.AttrDecision, decision),
		tracer.String(tracer.AttrReason, reasonCode),
	)
	s.emitValidated(ctx, q, decision, reason)
	if s.metrics != nil {
		s.metrics.ObserveValidation(decision, reasonCode, time.Since(start).Seconds())
	}
	return reason
}

// decide returns nil for a valid credential, a registry rejection error, or
// an infrastructure error.
func (s *Service) decide(ctx context.Context, q models.ValidateQuery) error {
	record, err := s.records.FindByToken(ctx, q.ProofToken)
	if err != nil {
		return wrapRecordErr(err)
	}
	if !record.Registered {
		return dErrors.ErrVaccinationNotRegistered
	}
	if !record.HeldBy(q.PersonID) {
		return dErrors.ErrPersonMismatch
	}

	evalCtx, evalSpan := s.tracer.Start(ctx, tracer.SpanRuleEvaluate, tracer.String(tracer.AttrArea, q.Area.String()))
	verdict, err := s.rules.EvaluateRule(evalCtx, q.Area, record.Vaccine, record.VaccinationTime, q.ReferenceTime)
	if err == nil {
		evalSpan.SetAttributes(tracer.String(tracer.AttrVerdict, string(verdict)))
	}
	evalSpan.End(err)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to evaluate rule")
	}

	switch verdict {
	case ports.VerdictAccepted:
		return nil
	case ports.VerdictNoRule, ports.VerdictVaccineNotAccepted:
		return dErrors.ErrVaccineNotAccepted
	case ports.VerdictTooOld:
		return dErrors.ErrVaccinationTooOld
	default:
		return dErrors.New(dErrors.CodeInternal, "unknown rule verdict")
	}
}

func isRejection(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeVaccinationNotRegistered,
		dErrors.CodePersonMismatch,
		dErrors.CodeVaccineNotAccepted,
		dErrors.CodeVaccinationTooOld:
		return true
	default:
		return false
	}
}
