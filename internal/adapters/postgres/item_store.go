package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notifier fans out "collection changed" signals between writers and
// subscribers.
type Notifier interface {
	Notify(ctx context.Context, collection string) error
	Listen(ctx context.Context, collection string) (Listener, error)
}

type Listener interface {
	C() <-chan struct{}
	Err() <-chan error
	Close() error
}

// Store is a realtime collection store: JSON documents per collection in
// Postgres, change signals over the Notifier, blobs in a bytea table.
type Store struct {
	db          *pgxpool.Pool
	notifier    Notifier
	blobBaseURL string
	log         logger.Logger
}

func NewStore(db *pgxpool.Pool, notifier Notifier, blobBaseURL string, log logger.Logger) *Store {
	return &Store{
		db:          db,
		notifier:    notifier,
		blobBaseURL: strings.TrimRight(blobBaseURL, "/"),
		log:         log,
	}
}

func SplitPath(path string) (collection, id string, err error) {
	collection, id, ok := strings.Cut(strings.Trim(path, "/"), "/")
	if !ok || collection == "" || id == "" || strings.Contains(id, "/") {
		return "", "", fmt.Errorf("%w: %q", domain.ErrInvalidPath, path)
	}
	return collection, id, nil
}

func (s *Store) Write(ctx context.Context, path string, value any) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}
	if err := s.upsert(ctx, collection, id, value); err != nil {
		return err
	}
	s.notify(ctx, collection)
	return nil
}

func (s *Store) Push(ctx context.Context, collection string, value any) (string, error) {
	if collection == "" || strings.Contains(collection, "/") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPath, collection)
	}

	id := uuid.NewString()
	if err := s.upsert(ctx, collection, id, value); err != nil {
		return "", err
	}
	s.notify(ctx, collection)
	return id, nil
}

func (s *Store) List(ctx context.Context, collection string) ([]domain.Item, error) {
	query := `
		SELECT id, payload
		FROM collection_items
		WHERE collection = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		var key string
		var payload []byte
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan collection item: %w", err)
		}

		item, err := DecodeItem(key, payload)
		if err != nil {
			s.log.Warn("store: skipping undecodable item", "collection", collection, "id", key, "error", err)
			continue
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// DecodeItem reads a listable item out of a stored document. Extra fields
// (banner grade, metrics) are ignored; a missing id falls back to the key.
func DecodeItem(key string, payload []byte) (domain.Item, error) {
	var item domain.Item
	if err := json.Unmarshal(payload, &item); err != nil {
		return domain.Item{}, err
	}
	if item.ID == "" {
		item.ID = key
	}
	return item, nil
}

func (s *Store) Subscribe(ctx context.Context, collection string) (domain.SnapshotStream, error) {
	ctx, cancel := context.WithCancel(ctx)

	listener, err := s.notifier.Listen(ctx, collection)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to listen on %s: %w", collection, err)
	}

	st := &stream{
		events:   make(chan domain.StreamEvent, 1),
		cancel:   cancel,
		listener: listener,
		done:     make(chan struct{}),
	}

	go s.run(ctx, collection, st)

	return st, nil
}

func (s *Store) run(ctx context.Context, collection string, st *stream) {
	defer close(st.done)
	defer close(st.events)

	emit := func(ev domain.StreamEvent) bool {
		select {
		case st.events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	load := func() bool {
		items, err := s.List(ctx, collection)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			return emit(domain.StreamEvent{Err: err})
		}
		return emit(domain.StreamEvent{Snapshot: &domain.ListSnapshot{
			Collection: collection,
			Items:      items,
			ReceivedAt: time.Now().UTC(),
		}})
	}

	if !load() {
		return
	}

	errs := st.listener.Err()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-st.listener.C():
			if !ok {
				return
			}
			if !load() {
				return
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if !emit(domain.StreamEvent{Err: err}) {
				return
			}
		}
	}
}

func (s *Store) upsert(ctx context.Context, collection, id string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	query := `
		INSERT INTO collection_items (collection, id, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (collection, id)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.Exec(ctx, query, collection, id, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) notify(ctx context.Context, collection string) {
	if err := s.notifier.Notify(ctx, collection); err != nil {
		s.log.Warn("store: change notification failed", "collection", collection, "error", err)
	}
}

type stream struct {
	events    chan domain.StreamEvent
	cancel    context.CancelFunc
	listener  Listener
	done      chan struct{}
	closeOnce sync.Once
}

func (st *stream) Events() <-chan domain.StreamEvent {
	return st.events
}

func (st *stream) Close() error {
	var err error
	st.closeOnce.Do(func() {
		st.cancel()
		<-st.done
		err = st.listener.Close()
	})
	return err
}
