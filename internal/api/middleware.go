package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/relay/pkg/apikey"
	"github.com/dmitrymomot/relay/pkg/logger"
)

// requestLogger logs one line per request after it completes.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				logger.Duration(time.Since(start)),
				slog.String("remote_ip", r.RemoteAddr),
			)
		})
	}
}

// cors allows cross-origin integration calls and answers preflight requests.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Api-Key")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// appLimiter keeps one token bucket per authenticated application.
type appLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newAppLimiter(rps float64, burst int) *appLimiter {
	return &appLimiter{limiters: make(map[string]*rate.Limiter), limit: rate.Limit(rps), burst: burst}
}

func (l *appLimiter) allow(appID string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[appID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[appID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// rateLimit must run after API key authentication.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app, ok := apikey.FromContext(r.Context())
		if ok && !s.limiter.allow(app.ID) {
			w.Header().Set("Retry-After", "1")
			s.writeError(w, r, ErrTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSession rejects dashboard requests without a valid session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.parse(tokenFromRequest(r))
		if err != nil {
			s.writeError(w, r, ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withOwner(r.Context(), sess.OwnerID)))
	})
}
