package worker

import (
	"context"
	"time"

	"catalog_api/internal/app/upload"
	"catalog_api/internal/domain/model"
	"catalog_api/internal/domain/repository"
	"catalog_api/internal/platform/logger"
	"catalog_api/internal/platform/metrics"
)

// ImageLister is implemented by upload.ImageStore.
type ImageLister interface {
	List() ([]upload.ImageFile, error)
	Remove(filename string) error
}

// Locker guards a sweep when several instances share one image directory.
type Locker interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

// ImageSweeper removes uploaded images that no product references any more,
// e.g. after a crash between writing an image and saving its product.
type ImageSweeper struct {
	productRepo repository.ProductRepository
	images      ImageLister
	locker      Locker
	interval    time.Duration
	grace       time.Duration
	now         func() time.Time
}

// NewImageSweeper builds a sweeper. locker may be nil for a single instance.
func NewImageSweeper(productRepo repository.ProductRepository, images ImageLister, locker Locker, interval, grace time.Duration) *ImageSweeper {
	return &ImageSweeper{
		productRepo: productRepo,
		images:      images,
		locker:      locker,
		interval:    interval,
		grace:       grace,
		now:         time.Now,
	}
}

func (w *ImageSweeper) Start(ctx context.Context) {
	if w.interval <= 0 {
		logger.Info("Image sweeper disabled")
		return
	}
	logger.Info("Image sweeper started, interval %s", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Image sweeper stopping...")
			return
		case <-ticker.C:
			if _, err := w.SweepOnce(ctx); err != nil {
				logger.WithError(err).Error("image sweep failed")
			}
		}
	}
}

// SweepOnce removes orphaned images older than the grace period and returns how many were removed.
func (w *ImageSweeper) SweepOnce(ctx context.Context) (int, error) {
	if w.locker != nil {
		release, ok, err := w.locker.Acquire(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			logger.Debug("image sweep skipped, another instance holds the lock")
			return 0, nil
		}
		defer release()
	}

	files, err := w.images.List()
	if err != nil {
		return 0, err
	}
	products, _, err := w.productRepo.List(ctx, model.ProductFilter{})
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]bool, len(products))
	for _, p := range products {
		if p.ImageFilename != "" {
			referenced[p.ImageFilename] = true
		}
	}

	cutoff := w.now().Add(-w.grace)
	removed := 0
	for _, f := range files {
		if referenced[f.Name] || f.ModTime.After(cutoff) {
			continue
		}
		if err := w.images.Remove(f.Name); err != nil {
			logger.WithError(err).WithField("image", f.Name).Warn("failed to remove orphaned image")
			continue
		}
		removed++
		metrics.ImagesSwept.Inc()
	}
	if removed > 0 {
		logger.WithField("count", removed).Info("removed orphaned images")
	}
	return removed, nil
}
