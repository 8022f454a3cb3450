package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/grpchealth"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-departure-alerts/internal/config"
	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/handler"
	"github.com/KasumiMercury/primind-departure-alerts/internal/health"
	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/ledger"
	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/prefstore"
	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/reconcilerecorder"
	"github.com/KasumiMercury/primind-departure-alerts/internal/infra/tripsource"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/logging"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/metrics"
	"github.com/KasumiMercury/primind-departure-alerts/internal/observability/middleware"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/aggregate"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/departure"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/dispatch"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/leaveby"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/policy"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/priority"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/render"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/traveltime"
)

// Version is set via ldflags at build time
var Version = "dev"

const moduleName = logging.Module("departure-alerts")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	departureMetrics, err := metrics.NewDepartureMetrics()
	if err != nil {
		slog.Error("failed to initialize departure metrics", slog.String("error", err.Error()))
		return 1
	}

	// Reconcile results go to InfluxDB locally and BigQuery under gcloud
	recorderCfg := reconcilerecorder.LoadConfig()
	recorder, err := reconcilerecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize reconcile result recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := recorder.Flush(flushCtx); err != nil {
			slog.Warn("failed to flush reconcile result recorder", slog.String("error", err.Error()))
		}
		if err := recorder.Close(); err != nil {
			slog.Warn("failed to close reconcile result recorder", slog.String("error", err.Error()))
		}
	}()

	facility, cleanup, err := initNotifier(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize notification facility", slog.String("error", err.Error()))
		return 1
	}
	if cleanup != nil {
		defer func() {
			if err := cleanup(); err != nil {
				slog.Error("notification facility cleanup error", slog.String("error", err.Error()))
			}
		}()
	}

	var redisClient *redis.Client
	if cfg.Store.UsesRedis() {
		redisClient, err = connectRedis(ctx, cfg.Redis)
		if err != nil {
			return 1
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}()
	}

	preferenceStore, err := newPreferenceStore(cfg.Store, redisClient)
	if err != nil {
		slog.Error("failed to initialize preference store",
			slog.String("backend", cfg.Store.PreferenceBackend),
			slog.String("error", err.Error()),
		)
		return 1
	}

	scheduleLedger, sqliteDB, err := newScheduleLedger(cfg.Store, redisClient)
	if err != nil {
		slog.Error("failed to initialize schedule ledger",
			slog.String("backend", cfg.Store.LedgerBackend),
			slog.String("error", err.Error()),
		)
		return 1
	}
	if sqliteDB != nil {
		defer func() {
			if err := sqliteDB.Close(); err != nil {
				slog.Warn("failed to close sqlite ledger", slog.String("error", err.Error()))
			}
		}()
	}

	loc := cfg.Departure.Location
	tripClient := tripsource.NewClient(cfg.TripSourceURL, cfg.Departure.TripSourceTimeout)

	planner := dispatch.NewPlanner(policy.NewEngine(loc), priority.NewClassifier(), render.NewRenderer(loc))
	dispatcher := dispatch.NewDispatcher(facility, scheduleLedger, departureMetrics)

	departureService := departure.NewService(
		tripClient,
		preferenceStore,
		scheduleLedger,
		aggregate.NewAggregator(loc),
		leaveby.NewCalculator(traveltime.NewEstimator()),
		planner,
		dispatcher,
		recorder,
		departureMetrics,
		cfg.Departure.DefaultPreferences(),
	)
	departureHandler := handler.NewDepartureHandler(departureService)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	healthChecker := health.NewChecker(redisClient, pinger(sqliteDB), Version)
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/" + grpchealth.HealthV1ServiceName + "/Check"},
		Module:      moduleName,
		TracerName:  "github.com/KasumiMercury/primind-departure-alerts/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())
	grpcHealthPath := healthChecker.RegisterGRPC(r)
	slog.Debug("grpc health service mounted", slog.String("path", grpcHealthPath))

	departureHandler.Register(r.Group("/api/v1"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("default_timezone", cfg.Departure.DefaultTimezone),
			slog.Int("default_lead_time_minutes", cfg.Departure.LeadTimeMinutes),
			slog.String("preference_store", cfg.Store.PreferenceBackend),
			slog.String("ledger_store", cfg.Store.LedgerBackend),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

func connectRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	redisClient := redis.NewClient(cfg.Options())

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		_ = redisClient.Close()
		return nil, err
	}

	slog.Info("redis connected",
		slog.String("addr", cfg.Addr),
		slog.Int("db", cfg.DB),
		slog.Bool("tls", cfg.TLS),
	)

	return redisClient, nil
}

func newPreferenceStore(cfg *config.StoreConfig, redisClient *redis.Client) (domain.PreferenceStore, error) {
	switch cfg.PreferenceBackend {
	case config.PreferenceBackendFile:
		return prefstore.NewFileStore(cfg.PreferenceDir)
	default:
		return prefstore.NewRedisStore(redisClient), nil
	}
}

// newScheduleLedger also returns the sqlite handle when the sqlite backend is selected
// so that it can be health-checked and closed.
func newScheduleLedger(cfg *config.StoreConfig, redisClient *redis.Client) (domain.ScheduleLedger, *sqlx.DB, error) {
	switch cfg.LedgerBackend {
	case config.LedgerBackendSQLite:
		db, err := ledger.OpenSQLite(cfg.LedgerSQLitePath)
		if err != nil {
			return nil, nil, err
		}
		l, err := ledger.NewSQLiteLedger(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		slog.Info("sqlite ledger opened", slog.String("path", cfg.LedgerSQLitePath))
		return l, db, nil
	default:
		return ledger.NewRedisLedger(redisClient), nil, nil
	}
}

func pinger(db *sqlx.DB) health.Pinger {
	if db == nil {
		return nil
	}
	return db
}
