package service

import (
	"context"
	"log/slog"

	ledgermetrics "vaxledger/internal/ledger/metrics"
	"vaxledger/internal/ledger/models"
	"vaxledger/internal/ledger/tracer"
)

type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *ledgermetrics.Metrics
	tx             StoreTx
	tracer         tracer.Tracer
	minter         *models.TokenMinter
}

type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithTx(tx StoreTx) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *serviceConfig) {
		c.tracer = t
	}
}

func WithTokenMinter(m *models.TokenMinter) Option {
	return func(c *serviceConfig) {
		c.minter = m
	}
}
