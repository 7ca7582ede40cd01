package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	centerhandler "vaxledger/internal/center/handler"
	ledgerhandler "vaxledger/internal/ledger/handler"
	"vaxledger/internal/platform/health"
	ruleshandler "vaxledger/internal/rules/handler"
	"vaxledger/pkg/platform/httputil"
	adminmw "vaxledger/pkg/platform/middleware/admin"
	auth "vaxledger/pkg/platform/middleware/auth"
	"vaxledger/pkg/platform/middleware/metadata"
	request "vaxledger/pkg/platform/middleware/request"
)

const requestTimeout = 30 * time.Second

// Handlers groups the bounded-context handlers mounted by the router.
type Handlers struct {
	Centers *centerhandler.Handler
	Rules   *ruleshandler.Handler
	Ledger  *ledgerhandler.Handler
	Health  *health.Handler
}

type Config struct {
	AdminToken     string
	TokenValidator auth.TokenValidator
	Metadata       *metadata.Middleware
	Metrics        *request.Metrics
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter wires every endpoint with the shared middleware stack.
// Probes and /metrics sit outside the timeout and latency middleware.
func NewRouter(cfg Config, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(cfg.Logger))
	if cfg.Metadata != nil {
		r.Use(cfg.Metadata.Handler)
	}

	if h.Health != nil {
		h.Health.Register(r)
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(api chi.Router) {
		api.Use(request.Timeout(requestTimeout))
		api.Use(request.BodyLimit(httputil.MaxBodyBytes))
		api.Use(request.ContentTypeJSON)
		api.Use(request.LatencyMiddleware(cfg.Metrics))

		h.Centers.Register(api)
		h.Rules.Register(api)
		h.Ledger.Register(api)

		api.Group(func(admin chi.Router) {
			admin.Use(adminmw.RequireAdminToken(cfg.AdminToken, cfg.Logger))
			h.Centers.RegisterAdmin(admin)
		})

		api.Group(func(authed chi.Router) {
			authed.Use(auth.RequireAuth(cfg.TokenValidator, cfg.Logger))
			h.Rules.RegisterAuthenticated(authed)
			h.Ledger.RegisterAuthenticated(authed)
		})
	})

	return r
}
