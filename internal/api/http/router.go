package http

import (
	"net/http"

	"github.com/consumergraph/consumergraph/internal/api/http/handlers"
	"github.com/consumergraph/consumergraph/internal/api/http/middleware"
	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/consumergraph/consumergraph/internal/mapping"
	"github.com/consumergraph/consumergraph/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterConfig holds what the routes serve
type RouterConfig struct {
	Reader      mapping.Reader
	Ready       handlers.ReadinessProbe
	ClusterName string
	Style       string
	Hub         *handlers.Hub
	Metrics     *metrics.APIMetrics

	// Gatherer, when set, is served on /metrics
	Gatherer prometheus.Gatherer
}

// Router manages HTTP routes and middleware
type Router struct {
	mux     *chi.Mux
	mapping *handlers.MappingHandlers
	page    *handlers.PageHandler
	hub     *handlers.Hub
}

// NewRouter creates a new router. It fails if the page template cannot be
// parsed.
func NewRouter(cfg RouterConfig) (*Router, error) {
	page, err := handlers.NewPageHandler(cfg.Reader, cfg.ClusterName, cfg.Style)
	if err != nil {
		return nil, err
	}

	r := &Router{
		mux:     chi.NewRouter(),
		mapping: handlers.NewMappingHandlers(cfg.Reader, cfg.ClusterName),
		page:    page,
		hub:     cfg.Hub,
	}

	r.setupRoutes(cfg)
	return r, nil
}

// setupRoutes sets up all HTTP routes
func (r *Router) setupRoutes(cfg RouterConfig) {
	log := logger.WithComponent("http.middleware")

	r.mux.Use(chimw.RequestID)
	r.mux.Use(chimw.RealIP)
	r.mux.Use(middleware.Recovery(log))
	r.mux.Use(middleware.Logging(log, cfg.Metrics))
	r.mux.Use(middleware.Tracing())

	r.mux.Method(http.MethodGet, "/", r.page)

	r.mux.Get("/health", handlers.HealthCheck)
	r.mux.Get("/ready", handlers.ReadinessCheck(cfg.Ready))

	r.mux.Route("/api/v1", func(api chi.Router) {
		api.Get("/mapping", r.mapping.Mapping)
		api.Get("/tree", r.mapping.Tree)
		api.Get("/topics", r.mapping.Topics)
		api.Get("/topics/{topic}", r.mapping.Topic)
	})

	if r.hub != nil {
		r.mux.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			handlers.ServeWebSocket(r.hub, w, req)
		})
	}

	if cfg.Gatherer != nil {
		r.mux.Method(http.MethodGet, "/metrics", handlers.MetricsHandler(cfg.Gatherer))
	}
}

// ServeHTTP dispatches to the routes
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
