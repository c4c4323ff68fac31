// Package server wires the storefront service together: config, store,
// cache, payments, queue, triggers, and the HTTP surface. All dependencies
// are constructed exactly once here and injected downward; nothing is
// mutated after boot.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/marketlane/storefront/app/jobs"
	"github.com/marketlane/storefront/app/repositories"
	"github.com/marketlane/storefront/app/routes"
	"github.com/marketlane/storefront/app/services"
	"github.com/marketlane/storefront/config"
	"github.com/marketlane/storefront/internal/triggers"
	"github.com/marketlane/storefront/pkg/cache"
	"github.com/marketlane/storefront/pkg/logger"
	"github.com/marketlane/storefront/pkg/metrics"
	"github.com/marketlane/storefront/pkg/middleware"
	"github.com/marketlane/storefront/pkg/queue"
	"github.com/marketlane/storefront/pkg/rbac"
	"github.com/marketlane/storefront/pkg/reqid"
	"github.com/marketlane/storefront/pkg/router"
)

// Start boots the full service and blocks until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	store, err := repositories.Connect(bootCtx, config.MongoURI(), config.MongoDB())
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	if config.LogToMongo() {
		sink := logger.NewMongoHandler(store.Database().Collection(repositories.ColLogs))
		defer sink.Close()
		logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), sink))
	}

	// Redis is optional: without it the analytics cache is off and the
	// queue falls back to the in-memory driver.
	redisCache, err := cache.Connect(bootCtx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", "error", err)
		redisCache = nil
	}

	payments := services.NewStripeProvider(config.StripeSecretKey())

	manager := queue.NewManager(queueDriver(redisCache))
	manager.Register(jobs.JobOrderConfirmation, func() queue.Job { return jobs.NewOrderConfirmation(store) })
	manager.Register(jobs.JobSearchIndex, func() queue.Job { return jobs.NewSearchIndex(store) })
	manager.Start(ctx, config.QueueWorkers())

	triggers.NewWatcher(store.Database(), manager).Start(ctx)

	authz := rbac.New(roleResolver(store))

	deps := routes.Deps{
		Payments:  payments,
		Orders:    services.NewOrderService(store, payments),
		Analytics: services.NewAnalyticsService(store, redisCache, config.AnalyticsCacheTTL()),
		Auth:      authz,
	}

	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(300, time.Minute))

	routes.RegisterAPI(r, deps)
	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    ":" + config.AppPort(),
		Handler: r.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "port", config.AppPort(), "env", config.AppEnv())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

// StartWorker runs only the queue workers and change-stream watcher,
// for deployments that split HTTP serving from job processing.
func StartWorker(workers int) error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	store, err := repositories.Connect(bootCtx, config.MongoURI(), config.MongoDB())
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	redisCache, err := cache.Connect(bootCtx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("redis unavailable, using in-memory queue", "error", err)
		redisCache = nil
	}

	manager := queue.NewManager(queueDriver(redisCache))
	manager.Register(jobs.JobOrderConfirmation, func() queue.Job { return jobs.NewOrderConfirmation(store) })
	manager.Register(jobs.JobSearchIndex, func() queue.Job { return jobs.NewSearchIndex(store) })

	if workers < 1 {
		workers = config.QueueWorkers()
	}
	manager.Start(ctx, workers)

	triggers.NewWatcher(store.Database(), manager).Start(ctx)

	<-ctx.Done()
	return nil
}

func queueDriver(redisCache *cache.Cache) queue.Driver {
	if config.QueueDriver() == "redis" && redisCache != nil {
		return queue.NewRedisDriver(redisCache.Client())
	}
	return queue.NewMemoryDriver()
}

// roleResolver adapts the user collection to the authorizer.
func roleResolver(store repositories.Store) rbac.RoleResolver {
	return func(ctx context.Context, uid string) (string, error) {
		user, err := store.GetUser(ctx, uid)
		if errors.Is(err, repositories.ErrNotFound) {
			return "", rbac.ErrUnknownUser
		}
		if err != nil {
			return "", err
		}
		return user.Role, nil
	}
}
