package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/civicdesk/issue-admin/internal/api/http"
	"github.com/civicdesk/issue-admin/internal/api/http/handlers"
	"github.com/civicdesk/issue-admin/internal/auth"
	"github.com/civicdesk/issue-admin/internal/config"
	"github.com/civicdesk/issue-admin/internal/events"
	"github.com/civicdesk/issue-admin/internal/notify"
	"github.com/civicdesk/issue-admin/internal/observability"
	"github.com/civicdesk/issue-admin/internal/persistence"
	"github.com/civicdesk/issue-admin/internal/repository"
	"github.com/civicdesk/issue-admin/internal/seed"
	"github.com/civicdesk/issue-admin/internal/service"
	"github.com/civicdesk/issue-admin/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	var checks []handlers.DependencyCheck

	store := repository.NewMemoryStore()
	if cfg.Store.Driver == config.StorePostgres {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
		checks = append(checks, handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping})
	}
	logger.Info("issue store ready", zap.String("driver", cfg.Store.Driver))

	if cfg.Seed.Enabled {
		if err := seedIfEmpty(ctx, store, cfg.Seed, cfg.Auth.BcryptCost, logger); err != nil {
			logger.Fatal("failed to seed store", zap.Error(err))
		}
	}

	var sessions auth.SessionStore = auth.NewMemorySessionStore(nil)
	var limiter auth.LoginLimiter = auth.NoopLimiter{}
	if cfg.Redis.Enabled {
		redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redis.Close()
		sessions = auth.NewRedisSessionStore(redis.Client, cfg.Session.KeyPrefix)
		limiter = auth.NewRedisLoginLimiter(redis.Client, cfg.RateLimit.KeyPrefix, cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window())
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: redis.Ping})
	}

	publisher, err := newPublisher(cfg.Notification, logger)
	if err != nil {
		logger.Fatal("failed to connect notification publisher", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	issueService := service.NewIssueService(service.IssueDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		Verifier: service.NewStaffDirectoryVerifier(store.Staff),
		Sessions: sessions,
		Tokens:   tokens,
		Limiter:  limiter,
		Metrics:  metrics,
		Logger:   logger,
	})
	orgService := service.NewOrgService(store, cfg.Auth.BcryptCost, logger)
	analyticsService := service.NewAnalyticsService(store)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Feed:       store.Notifications,
		Publisher:  publisher,
		Metrics:    metrics,
		Logger:     logger,
		FeedLimit:  cfg.Notification.FeedLimit,
	})
	notificationWorker := worker.StartNotificationWorker(notificationService, publisher, logger)
	defer notificationWorker.Stop()

	if _, err := orgService.Audit(ctx); err != nil {
		logger.Warn("integrity audit failed", zap.Error(err))
	}

	app := httptransport.NewApp(httptransport.AppOptions{
		Name:           cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		CORSOrigins:    cfg.App.CORSAllowOrigins,
	}, logger, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Auth:           handlers.NewAuthHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService, orgService),
		Staff:          handlers.NewStaffHandler(orgService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// seedIfEmpty loads the demo dataset when no departments exist yet.
func seedIfEmpty(ctx context.Context, store *repository.Store, cfg config.SeedConfig, bcryptCost int, logger *zap.Logger) error {
	existing, err := store.Departments.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("store already populated; skipping seed")
		return nil
	}

	dataset, err := seed.LoadFile(cfg.Path)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(cfg.StaffPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	fixtures, err := dataset.Build(time.Now().UTC(), hash)
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, store, fixtures); err != nil {
		return err
	}
	logger.Info("seeded store",
		zap.Int("departments", len(fixtures.Departments)),
		zap.Int("staff", len(fixtures.Staff)),
		zap.Int("issues", len(fixtures.Issues)))
	return nil
}

func newPublisher(cfg config.NotificationConfig, logger *zap.Logger) (notify.Publisher, error) {
	if cfg.NATSURL == "" {
		return notify.NewLogPublisher(logger), nil
	}
	publisher, err := notify.NewNATSPublisher(cfg.NATSURL, cfg.SubjectPrefix, cfg.ClientName, logger)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
