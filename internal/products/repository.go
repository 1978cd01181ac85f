package products

import (
	"context"

	"github.com/ammargroup/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wires together catalog persistence helpers.
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

// Create inserts the product row. Image rows are inserted separately so the
// insertion order fixes the main image.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Images").Create(product).Error
}

// Save persists all product columns.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Images").Save(product).Error
}

// Delete removes the product row and reports how many rows went away.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	return res.RowsAffected, res.Error
}

// FindByID loads the product with its images in insertion order.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.id ASC")
		}).
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate loads the product under a row lock so concurrent image
// mutations on the same product serialize. SQLite has no FOR UPDATE; its
// single-writer transactions give the same guarantee.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	tx := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product models.Product
	if err := tx.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns all products newest-first, images preloaded in insertion order.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.id ASC")
		}).
		Order("products.created_at DESC, products.id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListImages returns the product's image rows in insertion order.
func (r *Repository) ListImages(ctx context.Context, productID int64) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

// AddImages inserts the image rows preserving slice order.
func (r *Repository) AddImages(ctx context.Context, images []models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

// DeleteImageByURL removes one image row and reports how many rows matched.
func (r *Repository) DeleteImageByURL(ctx context.Context, productID int64, url string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND image_url = ?", productID, url).
		Delete(&models.ProductImage{})
	return res.RowsAffected, res.Error
}

// DeleteImagesByIDs removes the given image rows.
func (r *Repository) DeleteImagesByIDs(ctx context.Context, productID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("product_id = ? AND id IN ?", productID, ids).
		Delete(&models.ProductImage{}).Error
}

// DeleteAllImages removes every image row of the product.
func (r *Repository) DeleteAllImages(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductImage{}).Error
}

// MainImageURL returns the URL of the oldest surviving image row, or nil
// when the product has no images left.
func (r *Repository) MainImageURL(ctx context.Context, productID int64) (*string, error) {
	var urls []string
	err := r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Order("id ASC").
		Limit(1).
		Pluck("image_url", &urls).Error
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, nil
	}
	return &urls[0], nil
}
