package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/roamjs/gateway/pkg/billing"
	"github.com/roamjs/gateway/pkg/directory"
	"github.com/roamjs/gateway/pkg/environment"
	"github.com/roamjs/gateway/pkg/httputil"
	"github.com/roamjs/gateway/pkg/middleware"
	"github.com/roamjs/gateway/pkg/notify"
	"github.com/roamjs/gateway/pkg/observability"
	"github.com/roamjs/gateway/pkg/registry"
)

// DefaultAllowedOrigin is the only browser origin the gateway serves
const DefaultAllowedOrigin = "https://roamresearch.com"

// allowedHeaders are the request headers accepted on preflight
var allowedHeaders = strings.Join([]string{
	"Content-Type",
	middleware.AuthorizationHeader,
	middleware.ExtensionHeader,
	middleware.ServiceHeader,
	middleware.UserTokenHeader,
	environment.DevHeader,
	httputil.RequestIDHeader,
}, ", ")

// Billing is the usage reconciliation engine as used by the handlers
type Billing interface {
	Reconcile(ctx context.Context, req billing.UsageRequest) (*billing.UsageOutcome, error)
	CurrentPeriod(ctx context.Context, env environment.Environment, customerID string) (*billing.Period, error)
}

// Config holds the collaborators of the server. Metrics, OTel, Health and
// Registry are optional.
type Config struct {
	Verifier  middleware.Verifier
	Directory directory.Directory
	Store     registry.Store
	Billing   Billing
	Notifier  notify.Notifier
	Logger    *logrus.Logger

	Metrics  *observability.Metrics
	OTel     *observability.OTelMetrics
	Health   *observability.HealthChecker
	Registry *prometheus.Registry

	AllowedOrigin string
	MaxBodyBytes  int64
}

// Server represents our API server
type Server struct {
	router    *mux.Router
	directory directory.Directory
	billing   Billing
	notifier  notify.Notifier
	logger    *logrus.Logger
	metrics   *observability.Metrics
	otel      *observability.OTelMetrics
	health    *observability.HealthChecker
	registry  *prometheus.Registry

	developer *middleware.DeveloperGuard
	user      *middleware.UserGuard
	handler   http.Handler

	allowedOrigin string
	maxBodyBytes  int64
}

// NewServer creates a new API server
func NewServer(cfg Config) *Server {
	instruments := middleware.Instruments{Metrics: cfg.Metrics, OTel: cfg.OTel}
	s := &Server{
		router:        mux.NewRouter(),
		directory:     cfg.Directory,
		billing:       cfg.Billing,
		notifier:      cfg.Notifier,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		otel:          cfg.OTel,
		health:        cfg.Health,
		registry:      cfg.Registry,
		developer:     middleware.NewDeveloperGuard(cfg.Verifier, cfg.Store, cfg.Logger, instruments),
		user:          middleware.NewUserGuard(cfg.Verifier, middleware.UserTokenHeader, cfg.Logger, instruments),
		allowedOrigin: cfg.AllowedOrigin,
		maxBodyBytes:  cfg.MaxBodyBytes,
	}
	if s.allowedOrigin == "" {
		s.allowedOrigin = DefaultAllowedOrigin
	}
	if s.health == nil {
		s.health = observability.NewHealthChecker("")
	}

	s.setupRoutes()
	s.handler = s.wrap(s.router)
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}

	// Extension routes
	s.router.Handle("/meter", s.serve(s.developer.Wrap(s.meter))).Methods(http.MethodPost)
	s.router.Handle("/user", s.serve(s.developer.Wrap(s.user.Wrap(s.userInfo)))).Methods(http.MethodGet)
	s.router.Handle("/error", s.serve(s.reportError)).Methods(http.MethodPost)

	// Operational routes
	s.router.HandleFunc("/healthz", s.health.Liveness).Methods(http.MethodGet)
	s.router.HandleFunc("/readyz", s.health.Readiness).Methods(http.MethodGet)
	if s.registry != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(s.registry)).Methods(http.MethodGet)
	}
}

func (s *Server) serve(h httputil.Handler) http.Handler {
	return httputil.Serve(h, s.logger)
}

// wrap applies the request middleware stack
func (s *Server) wrap(h http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		httputil.RecoveryMiddleware(s.logger),
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.AllowOriginMiddleware(s.allowedOrigin, allowedHeaders),
		middleware.Environment,
	}
	if s.maxBodyBytes > 0 {
		chain = append(chain, httputil.MaxBytesMiddleware(s.maxBodyBytes))
	}
	return otelhttp.NewHandler(httputil.Chain(chain...)(h), "roamjs-gateway")
}

// Router exposes the underlying router so callers can mount extra routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
