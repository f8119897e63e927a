// Package redis
package redis

import (
	"context"
	"fmt"
	"time"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"

	"github.com/redis/go-redis/v9"
)

func NewClient(ctx context.Context, redisURL string, log logger.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis not responding: %w", err)
	}

	log.Info("redis connection established successfully")
	return client, nil
}

// transport marks a redis failure as a transport error for the auth core.
func transport(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrTransport, err)
}
