// Command relay runs the notification relay HTTP service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/relay/internal/api"
	"github.com/dmitrymomot/relay/internal/db/migrations"
	"github.com/dmitrymomot/relay/internal/storage/postgres"
	"github.com/dmitrymomot/relay/pkg/apikey"
	"github.com/dmitrymomot/relay/pkg/config"
	"github.com/dmitrymomot/relay/pkg/email"
	"github.com/dmitrymomot/relay/pkg/httpserver"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/metrics"
	"github.com/dmitrymomot/relay/pkg/notifications"
	"github.com/dmitrymomot/relay/pkg/pg"
	"github.com/dmitrymomot/relay/pkg/redis"
	"github.com/dmitrymomot/relay/pkg/webhook"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_SERVICE" envDefault:"relay"`

	// API key lookups are cached in redis when REDIS_URL is set, in process
	// otherwise. A zero size without redis disables the cache. Run more than
	// one instance only with redis, since in-process caches do not share
	// invalidations.
	KeyCacheTTL  time.Duration `env:"APIKEY_CACHE_TTL" envDefault:"5m"`
	KeyCacheSize int           `env:"APIKEY_CACHE_SIZE" envDefault:"10000"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("relay stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		appCfg     appConfig
		pgCfg      pg.Config
		redisCfg   redis.Config
		emailCfg   email.Config
		webhookCfg webhook.Config
		notifyCfg  notifications.Config
		apiCfg     api.Config
		httpCfg    httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&webhookCfg)
	config.MustLoad(&notifyCfg)
	config.MustLoad(&apiCfg)
	config.MustLoad(&httpCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, appCfg.Service),
		logger.WithContextExtractors(logger.RequestIDExtractor(middleware.GetReqID)),
	)
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if pgCfg.AutoMigrate {
		if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
			return err
		}
	}
	store := postgres.New(pool)

	checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}}

	var keyClient goredis.UniversalClient
	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		keyClient = client
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	}
	keyCache := newKeyCache(keyClient, appCfg.KeyCacheSize, appCfg.KeyCacheTTL)
	if keyCache == nil {
		log.InfoContext(ctx, "api key cache disabled")
	}

	mailer, err := email.New(ctx, emailCfg)
	switch {
	case errors.Is(err, email.ErrEmailDisabled):
		log.InfoContext(ctx, "email delivery disabled")
	case err != nil:
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []notifications.ManagerOption{
		notifications.WithConfig(notifyCfg),
		notifications.WithManagerLogger(log.With(logger.Component("notifications"))),
		notifications.WithWebhookSender(webhook.NewSender(webhookCfg, nil)),
		notifications.WithObserver(metrics.NewObserver(registry)),
	}
	if mailer != nil {
		opts = append(opts, notifications.WithMailer(mailer))
	}
	manager := notifications.NewManager(store, opts...)

	auth := apikey.NewAuthenticator(store,
		apikey.WithCache(keyCache),
		apikey.WithLogger(log.With(logger.Component("apikey"))),
	)

	srv := api.NewServer(apiCfg, manager, store, auth,
		api.WithLogger(log),
		api.WithReadinessChecks(checks...),
		api.WithMetricsHandler(metrics.Handler(registry)),
	)

	log.InfoContext(ctx, "starting relay", slog.String("addr", httpCfg.Addr))
	return httpserver.New(httpCfg, httpserver.WithLogger(log)).Run(ctx, srv.Handler())
}
