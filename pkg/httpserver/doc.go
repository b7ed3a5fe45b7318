// Package httpserver runs an http.Handler with graceful shutdown and provides
// the liveness and readiness handlers mounted at /healthz and /readyz.
//
// Run listens on Config.Addr and blocks until ctx is cancelled, then drains
// in-flight requests for up to ShutdownTimeout:
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Serve does the same on an existing listener, which tests use with port 0.
//
// # Configuration
//
//	HTTP_ADDR               listen address, default :8080
//	HTTP_READ_TIMEOUT       default 30s
//	HTTP_WRITE_TIMEOUT      default 120s, long enough for a large broadcast
//	HTTP_IDLE_TIMEOUT       default 120s
//	HTTP_SHUTDOWN_TIMEOUT   default 30s
//
// # Health checks
//
// LivenessHandler always answers 200 ALIVE. ReadinessHandler runs each Check
// in order with the request context and answers 503 NOT_READY at the first
// failure, logging which check failed:
//
//	r.Get("/readyz", httpserver.ReadinessHandler(log,
//		httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//	))
//
// # Errors
//
// ErrStart wraps listen failures and ErrShutdown wraps a drain that did not
// finish in time.
package httpserver
