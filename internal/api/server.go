package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/okapi/internal/api/handler"
	mw "github.com/edvin/okapi/internal/api/middleware"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	router        chi.Router
	logger        zerolog.Logger
	authorizePath string
	authorize     *handler.Authorize
	checks        map[string]ReadinessCheck
	publicMetrics bool
}

// NewServer builds the public router. publicMetrics mounts /metrics on it and
// should be false when a separate metrics listener is running.
func NewServer(logger zerolog.Logger, authorizePath string, authorize *handler.Authorize, checks map[string]ReadinessCheck, publicMetrics bool) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		logger:        logger,
		authorizePath: "/" + strings.TrimPrefix(authorizePath, "/"),
		authorize:     authorize,
		checks:        checks,
		publicMetrics: publicMetrics,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	if s.publicMetrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Group(func(r chi.Router) {
		r.Use(mw.PageHeaders)
		r.Get(s.authorizePath, s.authorize.Handle)
		r.Post(s.authorizePath, s.authorize.Handle)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
