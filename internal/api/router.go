package api

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yegors/aeroai/internal/config"
	"github.com/yegors/aeroai/internal/metrics"
	"github.com/yegors/aeroai/internal/turbulence"
	"github.com/yegors/aeroai/internal/voice"
	"github.com/yegors/aeroai/pkg/logger"
)

// Router wires the API handlers and middleware
type Router struct {
	handler  *Handler
	config   *config.Config
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *logger.Logger
}

// NewRouter creates a new API router. The gatherer backs GET /metrics.
func NewRouter(estimator *turbulence.Estimator, relay voice.Relay, cfg *config.Config, m *metrics.Metrics, gatherer prometheus.Gatherer, log *logger.Logger) *Router {
	return &Router{
		handler:  NewHandler(estimator, relay, m, log),
		config:   cfg,
		metrics:  m,
		gatherer: gatherer,
		logger:   log.Named("router"),
	}
}

// corsOptions allows credentials for every configured origin. A "*" entry
// echoes the request origin back, since browsers reject a literal "*"
// together with credentials.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           600,
	}
	if slices.Contains(origins, "*") {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
	}
	return opts
}

// Routes returns the HTTP handler for all endpoints
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(rt.logger, rt.metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(rt.config.Server.CORSAllowedOrigins)))

	h := rt.handler
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/", h.GetRoot)
	r.Get("/health", h.GetHealth)
	r.Post("/predict_turbulence", h.PredictTurbulence)
	r.Post("/voice_assistant", h.VoiceAssistant)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))

	return r
}
