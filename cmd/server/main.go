// Command server runs the SyncUp achievements API and nightly evaluation sweep.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/syncup-app/achievements/internal/api"
	achapi "github.com/syncup-app/achievements/internal/api/achievements"
	notifapi "github.com/syncup-app/achievements/internal/api/notifications"
	"github.com/syncup-app/achievements/internal/config"
	"github.com/syncup-app/achievements/internal/notify"
	"github.com/syncup-app/achievements/internal/ratelimit"
	"github.com/syncup-app/achievements/internal/repository"
	"github.com/syncup-app/achievements/internal/service/achievements"
	"github.com/syncup-app/achievements/internal/service/scheduler"
	"github.com/syncup-app/achievements/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	if cfg.Database.Postgres.RunMigrations {
		if err := repository.RunMigrations(cfg.Database.Postgres.URL(), log.Component("migrate")); err != nil {
			return err
		}
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log.Component("database"))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	achievementRepo := repository.NewAchievementRepository(db)
	logRepo := repository.NewLogRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Catalog ---
	catalog := achievements.DefaultCatalog()
	if cfg.Achievements.CatalogFile != "" {
		catalog, err = achievements.LoadCatalogFile(cfg.Achievements.CatalogFile)
		if err != nil {
			return err
		}
	}
	if err := achievements.Seed(ctx, achievementRepo, catalog, log.Component("catalog")); err != nil {
		return err
	}

	// --- Services ---
	var store *repository.NotificationRepository
	if cfg.Notifications.InApp {
		store = notificationRepo
	}
	notifier := notify.NewService(store, notify.NewWebhookClient(&cfg.Notifications, log.Component("webhook")), log.Component("notify"))

	location, err := cfg.Achievements.GetLocation()
	if err != nil {
		return err
	}
	achievementService := achievements.NewService(achievementRepo, logRepo, userRepo, notifier, location, log.Component("achievements"))

	sched := scheduler.NewService(&cfg.Scheduler, achievementService, log.Component("scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	// --- HTTP ---
	deps := api.Dependencies{
		Achievements:  achapi.NewHandler(achievementService, log.Component("api")),
		Notifications: notifapi.NewHandler(notifier, log.Component("api")),
		HealthChecks:  map[string]api.HealthCheck{"database": db.Health},
	}

	if cfg.RateLimit.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Database.Redis.Addr(),
			Password: cfg.Database.Redis.Password,
			DB:       cfg.Database.Redis.DB,
			PoolSize: cfg.Database.Redis.PoolSize,
		})
		defer func() { _ = redisClient.Close() }()

		limiter, err := ratelimit.New(redisClient,
			time.Duration(cfg.RateLimit.Window)*time.Second,
			cfg.RateLimit.Requests,
			ratelimit.WithPrefix("syncup:ratelimit"),
		)
		if err != nil {
			return err
		}
		deps.Limiter = limiter
		deps.HealthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(cfg, deps, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Int("catalog_size", len(catalog)).
			Msg("HTTP server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
