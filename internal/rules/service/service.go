package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	rulesmetrics "vaxledger/internal/rules/metrics"
	"vaxledger/internal/rules/models"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/audit"
	"vaxledger/pkg/platform/sentinel"
	txcontext "vaxledger/pkg/platform/tx"
	"vaxledger/pkg/requestcontext"
)

type Store interface {
	Save(ctx context.Context, rule *models.Rule) error
	FindByArea(ctx context.Context, area id.Area) (*models.Rule, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service is the acceptance rule authority. Any authenticated caller may set
// the rule of any area; the caller is recorded on the rule and in the audit trail.
type Service struct {
	rules   Store
	logger  *slog.Logger
	audit   AuditPublisher
	metrics *rulesmetrics.Metrics
	tx      StoreTx
}

func New(rules Store, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	tx := cfg.tx
	if tx == nil {
		tx = txcontext.NewMemory()
	}
	return &Service{
		rules:   rules,
		logger:  cfg.logger,
		audit:   cfg.auditPublisher,
		metrics: cfg.metrics,
		tx:      tx,
	}
}

// RegisterRule replaces the rule of an area.
func (s *Service) RegisterRule(ctx context.Context, area id.Area, maxAge time.Duration, vaccines []models.Vaccine) (*models.Rule, error) {
	caller := requestcontext.Caller(ctx)
	rule, err := models.NewRule(area, maxAge, vaccines, caller, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.rules.Save(txCtx, rule); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save rule")
		}
		s.emitRegistered(txCtx, rule)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
	return rule, nil
}

func (s *Service) GetRule(ctx context.Context, area id.Area) (*models.Rule, error) {
	rule, err := s.rules.FindByArea(ctx, area)
	if err != nil {
		return nil, wrapRuleErr(err, "failed to load rule")
	}
	return rule, nil
}

// Evaluate applies the area's rule to a vaccination. A missing rule is a
// verdict, not an error; errors are infrastructure failures only.
func (s *Service) Evaluate(ctx context.Context, area id.Area, vaccine models.Vaccine, vaccinationTime, referenceTime time.Time) (models.Verdict, error) {
	rule, err := s.rules.FindByArea(ctx, area)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rule")
	}
	verdict := models.Evaluate(rule, vaccine, vaccinationTime, referenceTime)
	if s.metrics != nil {
		s.metrics.ObserveVerdict(string(verdict))
	}
	return verdict, nil
}

// Accepts is true iff a rule exists, lists the vaccine, and the vaccination
// is no older than the rule's max age at referenceTime.
func (s *Service) Accepts(ctx context.Context, area id.Area, codeType, code string, vaccinationTime, referenceTime time.Time) (bool, error) {
	verdict, err := s.Evaluate(ctx, area, models.Vaccine{CodeType: codeType, Code: code}, vaccinationTime, referenceTime)
	if err != nil {
		return false, err
	}
	return verdict.Accepted(), nil
}

func wrapRuleErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "no rule registered for area")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

func (s *Service) emitRegistered(ctx context.Context, rule *models.Rule) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(audit.EventRuleRegistered),
			"area", rule.Area.String(),
			"max_age", rule.MaxAge.String(),
			"vaccines", len(rule.Vaccines),
			"actor", rule.UpdatedBy.String(),
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit",
		)
	}
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		Action:  string(audit.EventRuleRegistered),
		Subject: rule.Area.String(),
		Actor:   rule.UpdatedBy.String(),
		Area:    rule.Area.String(),
	})
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"event", audit.EventRuleRegistered,
			"error", err,
		)
	}
}
