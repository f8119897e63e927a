// Package feed keeps a screen's view of a realtime collection. Every
// snapshot from the store replaces the previous one wholesale.
package feed

import (
	"context"
	"fmt"
	"sync"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"
)

type (
	SnapshotFunc func(domain.ListSnapshot)
	ErrorFunc    func(error)
)

type Feed struct {
	store domain.DataStore
	log   logger.Logger
}

func New(store domain.DataStore, log logger.Logger) *Feed {
	return &Feed{store: store, log: log}
}

type Subscription struct {
	collection string
	stream     domain.SnapshotStream
	cancel     context.CancelFunc
	done       chan struct{}
	closeOnce  sync.Once

	mu     sync.RWMutex
	latest *domain.ListSnapshot
}

// Subscribe starts one pump for collection. Stream errors go to onError and
// the subscription keeps running. The caller must Close it.
func (f *Feed) Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := f.store.Subscribe(ctx, collection)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("feed subscribe %s: %w", collection, err)
	}

	s := &Subscription{
		collection: collection,
		stream:     stream,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go s.pump(ctx, f.log, onSnapshot, onError)

	f.log.Info("feed: subscribed", "collection", collection)
	return s, nil
}

func (s *Subscription) pump(ctx context.Context, log logger.Logger, onSnapshot SnapshotFunc, onError ErrorFunc) {
	defer close(s.done)

	events := s.stream.Events()
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}

			if ev.Err != nil {
				log.Warn("feed: stream error", "collection", s.collection, "error", ev.Err)
				if onError != nil {
					onError(ev.Err)
				}
				continue
			}
			if ev.Snapshot == nil {
				continue
			}

			snap := *ev.Snapshot
			s.mu.Lock()
			s.latest = &snap
			s.mu.Unlock()

			if onSnapshot != nil {
				onSnapshot(snap)
			}
		}
	}
}

func (s *Subscription) Collection() string {
	return s.collection
}

// Latest returns the most recent snapshot, if one has arrived.
func (s *Subscription) Latest() (domain.ListSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return domain.ListSnapshot{}, false
	}
	return *s.latest, true
}

// Close releases the stream and waits for the pump to exit. Safe to call
// more than once.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		err = s.stream.Close()
		<-s.done
	})
	return err
}
