package service

import (
	"context"
	"errors"
	"log/slog"

	centermetrics "vaxledger/internal/center/metrics"
	"vaxledger/internal/center/models"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/audit"
	"vaxledger/pkg/platform/sentinel"
	txcontext "vaxledger/pkg/platform/tx"
	"vaxledger/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, center *models.Center) error
	FindByID(ctx context.Context, centerID id.CenterID) (*models.Center, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// RegisterCommand is the administrative request to add a center.
type RegisterCommand struct {
	ID      id.CenterID
	Name    string
	Address id.Address
}

// Service owns the authority list of vaccination centers.
type Service struct {
	centers Store
	logger  *slog.Logger
	audit   AuditPublisher
	metrics *centermetrics.Metrics
	tx      StoreTx
}

func New(centers Store, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	tx := cfg.tx
	if tx == nil {
		tx = txcontext.NewMemory()
	}
	return &Service{
		centers: centers,
		logger:  cfg.logger,
		audit:   cfg.auditPublisher,
		metrics: cfg.metrics,
		tx:      tx,
	}
}

// RegisterCenter adds a center. Callers are expected to be authorized as
// registry administrators before reaching this point.
func (s *Service) RegisterCenter(ctx context.Context, cmd RegisterCommand) (*models.Center, error) {
	var center *models.Center
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := models.NewCenter(cmd.ID, cmd.Name, cmd.Address, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.centers.Create(txCtx, c); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.ErrDuplicateCenter
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register center")
		}
		s.emitRegistered(txCtx, c)
		center = c
		return nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
	return center, nil
}

func (s *Service) GetCenter(ctx context.Context, centerID id.CenterID) (*models.Center, error) {
	center, err := s.centers.FindByID(ctx, centerID)
	if err != nil {
		return nil, wrapCenterErr(err, "failed to load center")
	}
	return center, nil
}

func (s *Service) IsRegistered(ctx context.Context, centerID id.CenterID) (bool, error) {
	_, err := s.centers.FindByID(ctx, centerID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load center")
	}
	return true, nil
}

func (s *Service) GetAddress(ctx context.Context, centerID id.CenterID) (id.Address, error) {
	center, err := s.GetCenter(ctx, centerID)
	if err != nil {
		return "", err
	}
	return center.Address, nil
}

func wrapCenterErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "center not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

func (s *Service) emitRegistered(ctx context.Context, c *models.Center) {
	actor := requestcontext.AdminActor(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(audit.EventCenterRegistered),
			"center_id", c.ID.String(),
			"address", c.Address.String(),
			"actor", actor,
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit",
		)
	}
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		Action:  string(audit.EventCenterRegistered),
		Subject: c.ID.String(),
		Actor:   actor,
	})
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"event", audit.EventCenterRegistered,
			"error", err,
		)
	}
}
