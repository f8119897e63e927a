package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"lorryadmin/internal/domain"

	"github.com/jackc/pgx/v5"
)

// UploadBlob stores the bytes under path and returns the public URL.
func (s *Store) UploadBlob(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	path = strings.Trim(path, "/")
	if path == "" || strings.Contains(path, "..") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPath, path)
	}

	query := `
		INSERT INTO blobs (path, content_type, data, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (path)
		DO UPDATE SET content_type = EXCLUDED.content_type, data = EXCLUDED.data
	`

	if _, err := s.db.Exec(ctx, query, path, contentType, data, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to store blob %s: %w", path, err)
	}

	return s.BlobURL(path), nil
}

func (s *Store) BlobURL(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.blobBaseURL + "/" + strings.Join(parts, "/")
}

func (s *Store) GetBlob(ctx context.Context, path string) (*domain.Blob, error) {
	query := `SELECT path, content_type, data, created_at FROM blobs WHERE path = $1`

	var b domain.Blob
	err := s.db.QueryRow(ctx, query, strings.Trim(path, "/")).Scan(&b.Path, &b.ContentType, &b.Data, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	return &b, nil
}

// PruneOrphanBlobs deletes blobs under collection/ older than before that no
// item in collection points at.
func (s *Store) PruneOrphanBlobs(ctx context.Context, collection string, before time.Time) (int64, error) {
	query := `
		DELETE FROM blobs b
		WHERE b.path LIKE $1 || '/%'
		AND b.created_at < $2
		AND NOT EXISTS (
			SELECT 1 FROM collection_items c
			WHERE c.collection = $1 AND $1 || '/' || c.id = b.path
		)
	`

	ct, err := s.db.Exec(ctx, query, collection, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune blobs in %s: %w", collection, err)
	}
	return ct.RowsAffected(), nil
}
