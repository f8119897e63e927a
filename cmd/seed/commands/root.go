package commands

import (
	"context"
	"os/signal"
	"syscall"

	"lorryadmin/internal/adapters/postgres"
	"lorryadmin/internal/adapters/redis"
	"lorryadmin/internal/config"
	"lorryadmin/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log logger.Logger

	databaseURL string
	redisURL    string
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:          "seed",
		Short:        "Seed the lorry admin database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			log = logger.New(cfg)
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			if redisURL == "" {
				redisURL = cfg.RedisURL
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&databaseURL, "dsn", "", "database url (default DATABASE_URL)")
	root.PersistentFlags().StringVar(&redisURL, "redis", "", "redis url (default REDIS_URL)")

	root.AddCommand(productsCmd(), userCmd())
	return root.ExecuteContext(ctx)
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	return postgres.InitDB(ctx, databaseURL, log)
}

// openStore returns a store whose writes notify live feeds.
func openStore(ctx context.Context) (*postgres.Store, func(), error) {
	pool, err := openPool(ctx)
	if err != nil {
		return nil, nil, err
	}

	rdb, err := redis.NewClient(ctx, redisURL, log)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	store := postgres.NewStore(pool, redis.NewNotifier(rdb, log), cfg.BlobBaseURL, log)
	return store, func() {
		rdb.Close()
		pool.Close()
	}, nil
}
