package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/relay/pkg/logger"
)

// Server runs an http.Server until the context is cancelled or the process
// receives SIGINT/SIGTERM, then drains in-flight requests.
type Server struct {
	cfg    Config
	log    *slog.Logger
	onStop []func(context.Context)
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStopHook registers fn to run after the listener is drained, for
// closing pools and clients in order.
func WithStopHook(fn func(context.Context)) Option {
	return func(s *Server) {
		if fn != nil {
			s.onStop = append(s.onStop, fn)
		}
	}
}

func New(cfg Config, opts ...Option) *Server {
	s := &Server{cfg: cfg, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run listens on cfg.Addr and serves handler. It blocks until shutdown.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Join(ErrStart, err)
	}
	return s.Serve(ctx, ln, handler)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.InfoContext(ctx, "http server started", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(ErrStart, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	for _, fn := range s.onStop {
		fn(shutdownCtx)
	}
	if err != nil {
		return errors.Join(ErrShutdown, err)
	}
	s.log.Info("http server stopped")
	return nil
}
