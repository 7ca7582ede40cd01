package service

import (
	"context"
	"errors"
	"log/slog"

	ledgermetrics "vaxledger/internal/ledger/metrics"
	"vaxledger/internal/ledger/models"
	"vaxledger/internal/ledger/ports"
	"vaxledger/internal/ledger/tracer"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/audit"
	"vaxledger/pkg/platform/sentinel"
	txcontext "vaxledger/pkg/platform/tx"
)

// Store persists vaccination records. Create fails with
// sentinel.ErrAlreadyUsed when the token is taken.
type Store interface {
	Create(ctx context.Context, record *models.Record) error
	FindByToken(ctx context.Context, token id.ProofToken) (*models.Record, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service is the vaccination ledger. It reads centers and rules through
// ports and never writes to either registry.
type Service struct {
	records Store
	centers ports.CenterLookup
	rules   ports.RuleEvaluator
	minter  *models.TokenMinter
	logger  *slog.Logger
	audit   AuditPublisher
	metrics *ledgermetrics.Metrics
	tracer  tracer.Tracer
	tx      StoreTx
}

func New(records Store, centers ports.CenterLookup, rules ports.RuleEvaluator, opts ...Option) (*Service, error) {
	if records == nil {
		return nil, errors.New("records store is required")
	}
	if centers == nil {
		return nil, errors.New("center lookup is required")
	}
	if rules == nil {
		return nil, errors.New("rule evaluator is required")
	}

	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	svc := &Service{
		records: records,
		centers: centers,
		rules:   rules,
		minter:  cfg.minter,
		logger:  cfg.logger,
		audit:   cfg.auditPublisher,
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
		tx:      cfg.tx,
	}
	if svc.minter == nil {
		svc.minter = models.NewTokenMinter()
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	if svc.tx == nil {
		svc.tx = txcontext.NewMemory()
	}
	return svc, nil
}

// GetRecord is the read accessor used for audit display.
func (s *Service) GetRecord(ctx context.Context, token id.ProofToken) (record *models.Record, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanGetRecord, tracer.String(tracer.AttrToken, token.String()))
	defer func() { span.End(err) }()

	record, err = s.records.FindByToken(ctx, token)
	if err != nil {
		return nil, wrapRecordErr(err)
	}
	if !record.Registered {
		return nil, dErrors.ErrVaccinationNotRegistered
	}
	return record, nil
}

func wrapRecordErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.ErrVaccinationNotRegistered
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vaccination record")
}
