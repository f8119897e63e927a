package workers

import (
	"context"
	"fmt"
	"time"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"
)

type BlobPruner interface {
	PruneOrphanBlobs(ctx context.Context, collection string, before time.Time) (int64, error)
}

// BlobCleanupWorker removes banner images whose banner record never landed,
// e.g. when the push failed after the upload succeeded.
type BlobCleanupWorker struct {
	blobs  BlobPruner
	maxAge time.Duration
	log    logger.Logger
	now    func() time.Time
}

func NewBlobCleanupWorker(blobs BlobPruner, maxAge time.Duration, log logger.Logger) *BlobCleanupWorker {
	return &BlobCleanupWorker{
		blobs:  blobs,
		maxAge: maxAge,
		log:    log,
		now:    time.Now,
	}
}

func (w *BlobCleanupWorker) Name() string {
	return "blob_cleanup"
}

func (w *BlobCleanupWorker) Run(ctx context.Context) error {
	cutoff := w.now().UTC().Add(-w.maxAge)

	n, err := w.blobs.PruneOrphanBlobs(ctx, domain.CollectionBanners, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune orphan blobs: %w", err)
	}

	if n > 0 {
		w.log.Info("worker: orphan blobs removed", "collection", domain.CollectionBanners, "count", n)
	}
	return nil
}
