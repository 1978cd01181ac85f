package cleanup

import (
	"context"

	"github.com/ammargroup/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists the file cleanup queue.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Enqueue queues URLs whose files could not be deleted inline.
func (r *Repository) Enqueue(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	rows := make([]models.FileCleanup, 0, len(urls))
	for _, url := range urls {
		rows = append(rows, models.FileCleanup{URL: url})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListPending returns queued entries that have not exhausted their attempts.
func (r *Repository) ListPending(ctx context.Context, maxAttempts int) ([]models.FileCleanup, error) {
	var rows []models.FileCleanup
	err := r.db.WithContext(ctx).
		Where("attempts < ?", maxAttempts).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Resolve removes a queue entry whose file is gone.
func (r *Repository) Resolve(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.FileCleanup{}, id).Error
}

// RecordFailure bumps the attempt counter and stores the latest error.
func (r *Repository) RecordFailure(ctx context.Context, id int64, message string) error {
	return r.db.WithContext(ctx).
		Model(&models.FileCleanup{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": message,
		}).Error
}

// ReferencedURLs returns every upload URL the catalog still points at,
// including queued cleanup entries that have not been resolved yet.
func (r *Repository) ReferencedURLs(ctx context.Context) (map[string]struct{}, error) {
	refs := make(map[string]struct{})

	var imageURLs []string
	if err := r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Pluck("image_url", &imageURLs).Error; err != nil {
		return nil, err
	}
	for _, url := range imageURLs {
		refs[url] = struct{}{}
	}

	var mainURLs []string
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("image IS NOT NULL").
		Pluck("image", &mainURLs).Error; err != nil {
		return nil, err
	}
	for _, url := range mainURLs {
		refs[url] = struct{}{}
	}

	var queued []string
	if err := r.db.WithContext(ctx).
		Model(&models.FileCleanup{}).
		Pluck("url", &queued).Error; err != nil {
		return nil, err
	}
	for _, url := range queued {
		refs[url] = struct{}{}
	}

	return refs, nil
}
