// Package app is the composition root: it builds the registries, the
// ledger and their infrastructure from config and runs them until the
// context ends.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	centerhandler "vaxledger/internal/center/handler"
	centermetrics "vaxledger/internal/center/metrics"
	centerservice "vaxledger/internal/center/service"
	jwttoken "vaxledger/internal/jwt_token"
	"vaxledger/internal/ledger/adapters"
	ledgerhandler "vaxledger/internal/ledger/handler"
	ledgermetrics "vaxledger/internal/ledger/metrics"
	ledgerservice "vaxledger/internal/ledger/service"
	"vaxledger/internal/ledger/tracer"
	"vaxledger/internal/platform/config"
	"vaxledger/internal/platform/health"
	ruleshandler "vaxledger/internal/rules/handler"
	rulesservice "vaxledger/internal/rules/service"
	"vaxledger/internal/seeder"
	httptransport "vaxledger/internal/transport/http"
	"vaxledger/pkg/platform/audit/outbox/worker"
	"vaxledger/pkg/platform/audit/publisher"
	"vaxledger/pkg/platform/middleware/metadata"
	request "vaxledger/pkg/platform/middleware/request"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
)

type App struct {
	Router  http.Handler
	Centers *centerservice.Service
	Rules   *rulesservice.Service
	Ledger  *ledgerservice.Service
	JWT     *jwttoken.JWTService

	cfg       config.Server
	logger    *slog.Logger
	infra     *infra
	publisher *publisher.Publisher
	worker    *worker.Worker
}

// New builds the application. reg receives every metric; pass a fresh
// registry in tests.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger, reg *prometheus.Registry) (*App, error) {
	inf, err := openInfra(ctx, cfg, logger, reg)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger, infra: inf}
	if err := a.build(ctx, reg); err != nil {
		inf.close(logger)
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, reg *prometheus.Registry) error {
	a.publisher = publisher.NewPublisher(a.infra.auditStore,
		publisher.WithPublisherLogger(a.logger),
		publisher.WithPublisherMetrics(publisher.NewMetrics(reg)),
	)

	a.Centers = centerservice.New(a.infra.centers,
		centerservice.WithLogger(a.logger),
		centerservice.WithAuditPublisher(a.publisher),
		centerservice.WithMetrics(centermetrics.New(reg)),
		centerservice.WithTx(a.infra.registryTx),
	)
	a.Rules = rulesservice.New(a.infra.rules,
		rulesservice.WithLogger(a.logger),
		rulesservice.WithAuditPublisher(a.publisher),
		rulesservice.WithMetrics(a.infra.rulesMetrics),
		rulesservice.WithTx(a.infra.registryTx),
	)

	ledger, err := ledgerservice.New(a.infra.records,
		adapters.NewCenterAdapter(a.Centers),
		adapters.NewRulesAdapter(a.Rules),
		ledgerservice.WithLogger(a.logger),
		ledgerservice.WithAuditPublisher(a.publisher),
		ledgerservice.WithMetrics(ledgermetrics.New(reg)),
		ledgerservice.WithTracer(tracer.NewOTel()),
		ledgerservice.WithTx(a.infra.ledgerTx),
	)
	if err != nil {
		return fmt.Errorf("build ledger: %w", err)
	}
	a.Ledger = ledger

	if a.cfg.SeedFile != "" {
		f, err := seeder.LoadFile(a.cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := seeder.New(a.Centers, a.Rules, a.logger).Apply(ctx, f); err != nil {
			return err
		}
	}

	if a.infra.producer != nil {
		a.worker = worker.New(a.infra.outbox, a.infra.producer,
			worker.WithTopic(a.cfg.Audit.Topic),
			worker.WithBatchSize(a.cfg.Audit.BatchSize),
			worker.WithPollInterval(a.cfg.Audit.PollInterval),
			worker.WithMetrics(a.infra.outboxMetrics),
			worker.WithLogger(a.logger),
		)
	}

	proxies, err := metadata.ParseTrustedProxies(a.cfg.TrustedProxies)
	if err != nil {
		return err
	}
	a.JWT = jwttoken.NewJWTService(a.cfg.JWTSigningKey, a.cfg.JWTIssuer, a.cfg.JWTAudience, a.cfg.TokenTTL)

	backends := make([]health.Option, 0, len(a.infra.backends))
	for component, backend := range a.infra.backends {
		backends = append(backends, health.WithBackend(component, backend))
	}
	healthHandler := health.New(a.cfg.Environment, backends...)
	for name, check := range a.infra.checks {
		healthHandler.RegisterCheck(name, check)
	}

	a.Router = httptransport.NewRouter(httptransport.Config{
		AdminToken:     a.cfg.AdminAPIToken,
		TokenValidator: jwttoken.NewJWTServiceAdapter(a.JWT),
		Metadata:       metadata.NewMiddleware(metadata.Config{TrustedProxies: proxies}),
		Metrics:        request.NewMetrics(reg),
		Gatherer:       reg,
		Logger:         a.logger,
	}, httptransport.Handlers{
		Centers: centerhandler.New(a.Centers, a.logger),
		Rules:   ruleshandler.New(a.Rules, a.logger),
		Ledger:  ledgerhandler.New(a.Ledger, a.logger),
		Health:  healthHandler,
	})
	return nil
}

// Run serves HTTP on ln and runs the background workers until ctx is
// cancelled or one of them fails.
func (a *App) Run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting http server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down server gracefully")
		return srv.Shutdown(shutdownCtx)
	})

	if a.worker != nil {
		a.worker.Start()
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return a.worker.Stop(stopCtx)
		})
	}

	if a.infra.redis != nil || a.worker != nil {
		g.Go(func() error {
			a.recordGauges(gctx)
			return nil
		})
	}

	return g.Wait()
}

// recordGauges refreshes pool and outbox gauges until ctx ends.
func (a *App) recordGauges(ctx context.Context) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.infra.redis != nil {
				a.infra.redis.RecordPoolStats()
			}
			if a.worker != nil {
				if err := a.worker.UpdateMetrics(ctx); err != nil {
					a.logger.Warn("failed to refresh outbox depth", "error", err)
				}
			}
		}
	}
}

// Close flushes the audit publisher and releases infrastructure.
func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	a.infra.close(a.logger)
}
