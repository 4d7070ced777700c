package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ricirt/sms-engine/internal/api/handler"
	apimw "github.com/ricirt/sms-engine/internal/api/middleware"
	"github.com/ricirt/sms-engine/internal/config"
	"github.com/ricirt/sms-engine/internal/metrics"
	"github.com/ricirt/sms-engine/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	svc *service.SMSService,
	m *metrics.Metrics,
	reg prometheus.Gatherer,
	cfg config.HTTP,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer) // recover panics, return 500
	r.Use(chimw.RealIP)    // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(cfg.MaxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", apimw.CorrelationHeader},
		ExposedHeaders:   []string{apimw.CorrelationHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(apimw.CorrelationID) // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))
	r.Use(apimw.Metrics(m.HTTPRequests, m.HTTPDuration))

	// --- handler instances ---
	sh := handler.NewSMSHandler(svc, logger)
	mh := handler.NewMetricsHandler(m)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	smsRoutes := func(r chi.Router) {
		r.Post("/single", sh.SendSingle)
		r.Post("/bulk", sh.SendBulk)
		r.Post("/dynamic", sh.SendDynamic)
		r.Get("/stats", mh.GetStats)
	}
	r.Route("/sms", smsRoutes)
	// legacy prefix kept for existing integrations
	r.Route("/api/sms", smsRoutes)

	return r
}
