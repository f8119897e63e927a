package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "lorryadmin/internal/adapters/http"
	"lorryadmin/internal/adapters/http/request"
	"lorryadmin/internal/adapters/http/response"
	"lorryadmin/internal/adapters/http/validator"
	"lorryadmin/internal/adapters/postgres"
	"lorryadmin/internal/adapters/redis"
	"lorryadmin/internal/adapters/ws/userws"
	"lorryadmin/internal/adapters/ws/userws/subscribers"
	"lorryadmin/internal/application/identity"
	"lorryadmin/internal/config"
	"lorryadmin/internal/core/auth"
	"lorryadmin/internal/core/banner"
	"lorryadmin/internal/core/event"
	"lorryadmin/internal/core/feed"
	"lorryadmin/internal/core/shell"
	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"
	"lorryadmin/internal/metrics"
	"lorryadmin/internal/workers"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logger.New(cfg)

	if cfg.JWTSecret == "" {
		log.Error("config: JWT_SECRET is mandatory")
		os.Exit(1)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	dbPool, err := postgres.InitDB(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	rdb, err := redis.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	m := metrics.New()
	bus := event.New(log)

	store := postgres.NewStore(dbPool, redis.NewNotifier(rdb, log), cfg.BlobBaseURL, log)
	audit := redis.NewAuditLog(rdb, log)

	provider := identity.NewProvider(identity.Deps{
		Users:   postgres.NewUserRepository(dbPool),
		Tokens:  redis.NewTokenStore(rdb),
		Resets:  redis.NewResetTokenStore(rdb),
		Limiter: redis.NewRateLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow),
		Mailer:  identity.NewLogMailer(log, cfg.ResetLinkURL),
	}, identity.Options{
		JWTSecret:       cfg.JWTSecret,
		JWTExpiry:       cfg.JWTExpiry,
		FederatedSecret: cfg.FederatedSecret,
		ResetTokenTTL:   cfg.ResetTokenTTL,
	}, log)

	ctrl := auth.NewController(provider, log, auth.Recorders{m, audit})
	app := shell.New(provider, ctrl, feed.New(store, log), store, bus, log, shell.Options{
		SplashDelay:    cfg.SplashDelay,
		HomeCollection: domain.CollectionProducts,
	})
	defer app.Stop()

	hub := userws.NewHub(ctx, log)
	subscribers.Register(bus, hub)
	bus.Subscribe(domain.TopicSnapshotReplaced, func(e any) {
		if evt, ok := e.(domain.EventSnapshotReplaced); ok {
			m.ObserveSnapshot(evt.Snapshot)
		}
	})

	w := response.NewJSONWriter()
	router := httpadapter.NewRouter(cfg, &httpadapter.RouterDeps{
		Ws: userws.NewWebHandler(hub, app, log, cfg.AllowedOrigins).Serve,
		Auth: httpadapter.NewAuthHandler(
			app,
			provider,
			audit,
			request.NewJSONDecoder(),
			w,
			validator.New(),
		),
		State:   httpadapter.NewStateHandler(app, w),
		Banner:  httpadapter.NewBannerHandler(banner.NewService(store, provider, log), w, log),
		Blob:    httpadapter.NewBlobHandler(store),
		Metrics: m,
		Log:     log,
	})

	srv := httpadapter.NewServer(router, cfg.Address)

	g, gctx := errgroup.WithContext(ctx)

	workers.NewManager(log, workers.NewScheduler(cfg.TimeZone, log), &workers.ManagerServices{
		Blobs: store,
	}).Start(gctx)

	g.Go(func() error {
		hub.Run()
		return nil
	})

	g.Go(func() error {
		log.Info("http: starting server", "address", cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		route, err := app.Start(gctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		log.Info("shell: initial route", "route", route)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		hub.Stop()
		app.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http: server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}
