package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/relay/pkg/logger"
)

// Check is a named readiness probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// LivenessHandler always answers 200 ALIVE.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	}
}

// ReadinessHandler runs every check with the request context and answers 200
// READY, or 503 NOT_READY on the first failure.
func ReadinessHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			if err := c.Fn(r.Context()); err != nil {
				log.LogAttrs(r.Context(), slog.LevelError, "readiness check failed",
					slog.String("check", c.Name), logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
