package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/kart-discounts/internal/domain/discount"
	"github.com/xenking/kart-discounts/internal/handler"
	"github.com/xenking/kart-discounts/internal/storage/postgres"
	"github.com/xenking/kart-discounts/internal/storage/redis"
	"github.com/xenking/kart-discounts/pkg/health"
	"github.com/xenking/kart-discounts/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	healthSvc := health.New()
	healthSvc.Register(health.Readiness, "postgres", 5*time.Second, health.Ping(pool))
	healthSvc.Register(health.Liveness, "goroutines", time.Second, health.GoroutineCount(10000))

	// Active rule snapshot: shared through Redis when configured.
	var cache discount.SnapshotCache = discount.NewMemoryCache(cfg.Rules.CacheTTL)
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() { _ = client.Close() }()

		if err := redisotel.InstrumentTracing(client, redisotel.WithTracerProvider(m.TracerProvider())); err != nil {
			lg.Warn("Instrument redis tracing", zap.Error(err))
		}
		if err := redisotel.InstrumentMetrics(client, redisotel.WithMeterProvider(m.MeterProvider())); err != nil {
			lg.Warn("Instrument redis metrics", zap.Error(err))
		}

		cache = redis.NewSnapshotCache(client, cfg.Rules.CacheTTL)
		healthSvc.Register(health.Readiness, "redis", 2*time.Second, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		lg.Info("Using shared rule cache", zap.String("key", discount.CacheKey))
	}

	metrics, err := discount.NewMetrics(m.MeterProvider().Meter("discount"))
	if err != nil {
		return errors.Wrap(err, "create metrics")
	}

	rules := postgres.NewRuleRepository(pool)
	source := discount.NewCachedSource(rules, cache, metrics)
	engine := discount.NewEngine(source,
		discount.WithMinorUnitExponent(cfg.Rules.MinorUnitExponent),
		discount.WithMetrics(metrics),
		discount.WithAppliedHook(metrics.Hook()),
		discount.WithAppliedHook(logApplied),
	)
	admin := discount.NewAdmin(rules, source)

	// Warms the cache and proves rules are readable.
	healthSvc.Register(health.Readiness, "rules", 5*time.Second, func(ctx context.Context) error {
		_, err := source.ActiveRules(ctx)
		return err
	})
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	h := handler.NewHandler(engine, admin, source)

	mux := chi.NewRouter()
	mux.Get("/livez", healthSvc.Handler(health.Liveness))
	mux.Get("/readyz", healthSvc.Handler(health.Readiness))
	mux.Mount("/api", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "discount-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.RequestID(),
			httpmiddleware.Recovery(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

func logApplied(ctx context.Context, a discount.Applied, remaining int64) {
	zctx.From(ctx).Debug("Discount applied",
		zap.Int64("rule_id", a.Rule.ID),
		zap.String("rule_name", a.Rule.Name),
		zap.Int64("amount", a.Amount),
		zap.Int64("applied_to", a.AppliedTo),
		zap.Int64("remaining", remaining),
	)
}
