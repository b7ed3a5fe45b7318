package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/relay/pkg/apikey"
	"github.com/dmitrymomot/relay/pkg/httpserver"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/notifications"
)

// Server exposes the relay over HTTP.
type Server struct {
	cfg      Config
	manager  *notifications.Manager
	apps     notifications.ApplicationStore
	auth     *apikey.Authenticator
	sessions *sessions
	limiter  *appLimiter
	log      *slog.Logger
	checks   []httpserver.Check
	metrics  http.Handler
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithReadinessChecks adds dependency probes to /readyz.
func WithReadinessChecks(checks ...httpserver.Check) Option {
	return func(s *Server) { s.checks = append(s.checks, checks...) }
}

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

func NewServer(cfg Config, manager *notifications.Manager, apps notifications.ApplicationStore, auth *apikey.Authenticator, opts ...Option) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	s := &Server{
		cfg:      cfg,
		manager:  manager,
		apps:     apps,
		auth:     auth,
		sessions: newSessions(cfg.SessionSecret, cfg.SessionTTL),
		log:      logger.Discard(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = newAppLimiter(cfg.RateLimit, max(cfg.RateBurst, 1))
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("api"))
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(s.log), middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) { s.writeError(w, r, ErrNotFound) })

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(s.log, s.checks...))
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	authenticate := apikey.Middleware(s.auth, apikey.WithErrorHandler(s.writeError))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors, authenticate, s.rateLimit)

		r.Post("/notifications", s.createNotification)
		r.Get("/notifications", s.listNotifications)
		r.Patch("/notifications/{id}", s.updateNotification)
		r.Delete("/notifications/{id}", s.deleteNotification)
		r.Post("/notifications/send", s.sendTargeted)
		r.Post("/notifications/bulk", s.sendBulk)
		r.Post("/notifications/broadcast", s.broadcast)
		r.Post("/broadcast", s.broadcast)
		r.Post("/events/bulk", s.sendOwnerEvents)
		r.Get("/stats", s.stats)
		r.Post("/app-users", s.upsertAppUser)
		r.Post("/app-users/bulk", s.upsertAppUsers)
	})

	r.Route("/api/ingest", func(r chi.Router) {
		r.Use(cors, apikey.Middleware(s.auth,
			apikey.WithExtractor(apikey.FromQuery("api_key")),
			apikey.WithErrorHandler(s.ingestAuthError),
		), s.rateLimit)
		r.Post("/", s.createNotification)
	})

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/applications", s.listApplications)
		r.Post("/applications", s.createApplication)
		r.Patch("/applications/{id}", s.updateApplication)
		r.Delete("/applications/{id}", s.deleteApplication)
		r.Post("/applications/{id}/regenerate-key", s.regenerateKey)
		r.Post("/notifications/send", s.dashboardSend)
	})

	if s.cfg.isDevelopment() {
		r.Post("/api/dev/session", s.devSession)
	}

	return r
}
