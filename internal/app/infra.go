package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	centerservice "vaxledger/internal/center/service"
	centerstore "vaxledger/internal/center/store"
	ledgerservice "vaxledger/internal/ledger/service"
	ledgerstore "vaxledger/internal/ledger/store"
	"vaxledger/internal/platform/config"
	"vaxledger/internal/platform/database"
	"vaxledger/internal/platform/health"
	"vaxledger/internal/platform/kafka/producer"
	redisclient "vaxledger/internal/platform/redis"
	rulesmetrics "vaxledger/internal/rules/metrics"
	rulesservice "vaxledger/internal/rules/service"
	rulesstore "vaxledger/internal/rules/store"
	"vaxledger/migrations"
	"vaxledger/pkg/platform/audit"
	"vaxledger/pkg/platform/audit/outbox"
	outboxmetrics "vaxledger/pkg/platform/audit/outbox/metrics"
	outboxpostgres "vaxledger/pkg/platform/audit/outbox/store/postgres"
	auditmemory "vaxledger/pkg/platform/audit/store/memory"
	auditoutbox "vaxledger/pkg/platform/audit/store/outbox"
	txcontext "vaxledger/pkg/platform/tx"
)

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type closer struct {
	name  string
	close func() error
}

// infra holds the backends chosen from config. With no DATABASE_URL every
// store is in memory; REDIS_URL adds the rule cache; DATABASE_URL plus
// KAFKA_BROKERS ships audit events through the outbox.
type infra struct {
	centers centerservice.Store
	rules   rulesservice.Store
	records ledgerservice.Store

	registryTx txRunner
	ledgerTx   txRunner

	auditStore    audit.Store
	outbox        outbox.Store
	producer      *producer.Producer
	outboxMetrics *outboxmetrics.Metrics
	rulesMetrics  *rulesmetrics.Metrics

	redis    *redisclient.Client
	checks   map[string]health.CheckFunc
	backends map[string]string
	closers  []closer
}

func openInfra(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer) (_ *infra, err error) {
	inf := &infra{
		checks:       make(map[string]health.CheckFunc),
		backends:     map[string]string{"registry": "memory", "ledger": "memory", "audit": "memory"},
		rulesMetrics: rulesmetrics.New(reg),
		registryTx:   txcontext.NewMemory(),
		ledgerTx:     txcontext.NewMemory(),
	}
	defer func() {
		if err != nil {
			inf.close(logger)
		}
	}()

	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		inf.closers = append(inf.closers, closer{"postgres", pool.Close})
		inf.checks["postgres"] = pool.Health
		if err := reg.Register(pool.Collector()); err != nil {
			return nil, fmt.Errorf("register db stats: %w", err)
		}
		if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		inf.centers = centerstore.NewPostgres(pool.DB())
		inf.rules = rulesstore.NewPostgres(pool.DB())
		inf.registryTx = txcontext.NewPostgres(pool.DB())
		inf.backends["registry"] = "postgres"
	} else {
		inf.centers = centerstore.NewInMemory()
		inf.rules = rulesstore.NewInMemory()
	}

	if err := inf.openLedger(cfg, pool); err != nil {
		return nil, err
	}

	if inf.redis, err = redisclient.New(cfg.Redis, redisclient.NewPoolMetrics(reg)); err != nil {
		return nil, err
	}
	if inf.redis != nil {
		inf.closers = append(inf.closers, closer{"redis", inf.redis.Close})
		inf.checks["redis"] = inf.redis.Health
		inf.rules = rulesstore.NewCached(inf.rules, inf.redis.Client,
			rulesstore.WithCacheTTL(cfg.Rules.CacheTTL),
			rulesstore.WithCacheMetrics(inf.rulesMetrics),
			rulesstore.WithCacheLogger(logger),
		)
		inf.backends["rules_cache"] = "redis"
	}

	if cfg.AuditWorkerEnabled() {
		inf.outbox = outboxpostgres.New(pool.DB())
		inf.auditStore = auditoutbox.New(inf.outbox)
		inf.outboxMetrics = outboxmetrics.New(reg)
		if inf.producer, err = producer.New(cfg.Kafka, logger); err != nil {
			return nil, err
		}
		inf.closers = append(inf.closers, closer{"kafka", inf.producer.Close})
		inf.checks["kafka"] = inf.producer.Health
		inf.backends["audit"] = "outbox"
	} else {
		inf.auditStore = auditmemory.NewInMemoryStore()
	}

	logger.Info("infrastructure ready",
		"ledger_store", cfg.Ledger.Store,
		"postgres", pool != nil,
		"redis", inf.redis != nil,
		"audit_outbox", inf.producer != nil,
	)
	return inf, nil
}

func (inf *infra) openLedger(cfg config.Server, pool *database.Pool) error {
	switch cfg.Ledger.Store {
	case config.LedgerStorePostgres:
		if pool == nil {
			return fmt.Errorf("ledger store postgres requires a database")
		}
		inf.records = ledgerstore.NewPostgres(pool.DB())
		inf.ledgerTx = txcontext.NewPostgres(pool.DB())
		inf.backends["ledger"] = "postgres"
	case config.LedgerStoreLevelDB:
		db, err := ledgerstore.OpenLevelDB(cfg.Ledger.LevelDBPath)
		if err != nil {
			return err
		}
		inf.records = db
		inf.closers = append(inf.closers, closer{"leveldb", db.Close})
		inf.backends["ledger"] = "leveldb"
	default:
		inf.records = ledgerstore.NewInMemory()
	}
	return nil
}

// close releases resources in reverse order of acquisition.
func (inf *infra) close(logger *slog.Logger) {
	for i := len(inf.closers) - 1; i >= 0; i-- {
		c := inf.closers[i]
		if err := c.close(); err != nil {
			logger.Error("failed to close resource", "resource", c.name, "error", err)
		}
	}
	inf.closers = nil
}
