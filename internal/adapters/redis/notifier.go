package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lorryadmin/internal/adapters/postgres"
	"lorryadmin/internal/logger"

	"github.com/redis/go-redis/v9"
)

const (
	collectionChannelPrefix = "collection:"
	retryDelay              = time.Second
)

// Notifier signals collection changes over redis pub/sub.
type Notifier struct {
	redis *redis.Client
	log   logger.Logger
}

func NewNotifier(r *redis.Client, log logger.Logger) *Notifier {
	return &Notifier{redis: r, log: log}
}

func ChannelFor(collection string) string {
	return collectionChannelPrefix + collection
}

func (n *Notifier) Notify(ctx context.Context, collection string) error {
	if err := n.redis.Publish(ctx, ChannelFor(collection), "changed").Err(); err != nil {
		return fmt.Errorf("notifier publish failed: %w", err)
	}
	return nil
}

func (n *Notifier) Listen(ctx context.Context, collection string) (postgres.Listener, error) {
	ps := n.redis.Subscribe(ctx, ChannelFor(collection))

	// Wait for the subscription confirmation so no change slips in between
	// the first snapshot load and the listener going live.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("notifier subscribe failed: %w", err)
	}

	l := &listener{
		ps:      ps,
		changes: make(chan struct{}, 1),
		errs:    make(chan error, 1),
	}
	go l.pump(ctx, n.log, collection)

	return l, nil
}

type listener struct {
	ps        *redis.PubSub
	changes   chan struct{}
	errs      chan error
	closeOnce sync.Once
}

// pump turns pub/sub messages into change signals. Receive errors are
// reported on errs and the loop keeps going; go-redis reconnects on the
// next receive.
func (l *listener) pump(ctx context.Context, log logger.Logger, collection string) {
	defer close(l.changes)
	defer close(l.errs)

	for {
		msg, err := l.ps.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
				return
			}

			select {
			case l.errs <- err:
			default:
			}

			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return
			}
			continue
		}

		log.Debug("notifier: change received", "collection", collection, "channel", msg.Channel)

		// Coalesce bursts: one pending signal is enough for a full reload.
		select {
		case l.changes <- struct{}{}:
		default:
		}
	}
}

func (l *listener) C() <-chan struct{} {
	return l.changes
}

func (l *listener) Err() <-chan error {
	return l.errs
}

func (l *listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = l.ps.Close()
	})
	return err
}
