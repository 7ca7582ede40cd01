package service

import (
	"context"

	"vaxledger/internal/ledger/models"
	"vaxledger/pkg/platform/audit"
	"vaxledger/pkg/platform/privacy"
	"vaxledger/pkg/requestcontext"
)

// Audit lines never carry person identifiers.

func (s *Service) emitCertified(ctx context.Context, record *models.Record) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(audit.EventVaccinationCertified),
			"proof_token", record.ProofToken.String(),
			"center_id", record.CenterID.String(),
			"vaccine_code_type", record.Vaccine.CodeType,
			"vaccine_code", record.Vaccine.Code,
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit",
		)
	}
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventVaccinationCertified),
		Subject:  record.ProofToken.String(),
		Actor:    record.CertifiedBy.String(),
		Decision: audit.DecisionAccepted,
	})
}

func (s *Service) emitCertificationRejected(ctx context.Context, cmd models.CertifyCommand, reason error) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, string(audit.EventCertificationRejected),
			"center_id", cmd.CenterID.String(),
			"caller", cmd.Caller.String(),
			"reason", reason.Error(),
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit",
		)
	}
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventCertificationRejected),
		Subject:  cmd.CenterID.String(),
		Actor:    cmd.Caller.String(),
		Decision: audit.DecisionRejected,
		Reason:   reason.Error(),
	})
}

func (s *Service) emitValidated(ctx context.Context, q models.ValidateQuery, decision string, reason error) {
	reasonText := ""
	if reason != nil {
		reasonText = reason.Error()
	}
	device := privacy.DeviceClass(requestcontext.UserAgent(ctx))
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(audit.EventVaccinationValidated),
			"proof_token", q.ProofToken.String(),
			"area", q.Area.String(),
			"reference_time", q.ReferenceTime.Unix(),
			"caller", q.Caller.String(),
			"decision", decision,
			"reason", reasonText,
			"device", device,
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit",
		)
	}
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventVaccinationValidated),
		Subject:  q.ProofToken.String(),
		Actor:    q.Caller.String(),
		Area:     q.Area.String(),
		Decision: decision,
		Reason:   reasonText,
		Device:   device,
	})
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"event", event.Action,
			"error", err,
		)
	}
}
