package redis

import (
	"context"
	"errors"
	"time"

	"lorryadmin/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKey     = "session:current"
	resetKeyPrefix = "reset:"
	limitKeyPrefix = "ratelimit:"
)

// TokenStore persists the device's access token.
type TokenStore struct {
	redis *redis.Client
	key   string
}

func NewTokenStore(r *redis.Client) *TokenStore {
	return &TokenStore{redis: r, key: sessionKey}
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.redis.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", transport("session load", err)
	}
	return token, nil
}

func (s *TokenStore) Save(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key, token, ttl).Err(); err != nil {
		return transport("session save", err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return transport("session clear", err)
	}
	return nil
}

type ResetTokenStore struct {
	redis *redis.Client
}

func NewResetTokenStore(r *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{redis: r}
}

func (s *ResetTokenStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, resetKeyPrefix+token, userID, ttl).Err(); err != nil {
		return transport("reset put", err)
	}
	return nil
}

// Take returns the user for token and deletes it.
func (s *ResetTokenStore) Take(ctx context.Context, token string) (string, error) {
	userID, err := s.redis.GetDel(ctx, resetKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", transport("reset take", err)
	}
	return userID, nil
}

// RateLimiter is a fixed-window counter.
type RateLimiter struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(r *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: r, limit: limit, window: window}
}

func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := limitKeyPrefix + key

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, transport("ratelimit", err)
	}

	return incr.Val() <= l.limit, nil
}
