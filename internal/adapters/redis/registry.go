package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"

	"github.com/redis/go-redis/v9"
)

const (
	auditStream    = "auth:attempts"
	auditMaxLen    = 1000
	auditWriteWait = 2 * time.Second
)

// AuditLog keeps a capped stream of auth attempts.
type AuditLog struct {
	redis *redis.Client
	log   logger.Logger
	now   func() time.Time
}

func NewAuditLog(r *redis.Client, log logger.Logger) *AuditLog {
	return &AuditLog{redis: r, log: log, now: time.Now}
}

// ObserveOutcome appends in the background so a slow redis never holds up
// the auth attempt.
func (a *AuditLog) ObserveOutcome(flow domain.FlowKind, outcome domain.AuthOutcome) {
	entry := domain.AuthAttempt{
		Flow:    flow,
		Success: outcome.Success,
		Reason:  outcome.Reason,
		UserID:  outcome.UserID,
		At:      a.now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteWait)
		defer cancel()

		if _, err := a.Append(ctx, entry); err != nil {
			a.log.Warn("audit: append failed", "error", err)
		}
	}()
}

func (a *AuditLog) Append(ctx context.Context, entry domain.AuthAttempt) (string, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("audit marshal failed: %w", err)
	}

	id, err := a.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: auditStream,
		Values: map[string]any{
			"data": data,
		},
		MaxLen: auditMaxLen,
		Approx: true,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("audit xadd failed: %w", err)
	}

	return id, nil
}

// Recent returns the newest entries first.
func (a *AuditLog) Recent(ctx context.Context, limit int64) ([]domain.AuthAttempt, error) {
	msgs, err := a.redis.XRevRangeN(ctx, auditStream, "+", "-", limit).Result()
	if err != nil {
		return nil, fmt.Errorf("audit xrevrange failed: %w", err)
	}

	return decodeAudit(msgs), nil
}

func decodeAudit(msgs []redis.XMessage) []domain.AuthAttempt {
	entries := make([]domain.AuthAttempt, 0, len(msgs))
	for _, m := range msgs {
		raw, ok := m.Values["data"].(string)
		if !ok {
			continue
		}

		var e domain.AuthAttempt
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		e.ID = m.ID
		entries = append(entries, e)
	}
	return entries
}
