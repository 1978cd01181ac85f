package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ammargroup/storefront-backend/pkg/db"
	"github.com/ammargroup/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ammargroup/storefront-backend/pkg/errors"
	"github.com/ammargroup/storefront-backend/pkg/logger"
	"github.com/ammargroup/storefront-backend/pkg/storage/local"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput, files []FileUpload) (*ProductDTO, error)
	Update(ctx context.Context, id int64, input UpdateProductInput, files []FileUpload) (*ProductDTO, int, error)
	Delete(ctx context.Context, id int64) (int, error)
	DeleteImage(ctx context.Context, id int64, imageURL string) (*ProductDTO, error)
	Get(ctx context.Context, id int64) (*ProductDTO, error)
	List(ctx context.Context) ([]ProductDTO, error)
}

// FileUpload is one incoming image, already opened by the transport layer.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name            string
	SKU             *string
	Brand           *string
	Category        *string
	Description     *string
	LongDescription *string
	Specifications  []string
	Features        []string
	Price           *decimal.Decimal
	StockCount      int
	InStock         bool
	Rating          float64
	Featured        bool
}

// UpdateProductInput holds the mutation values for a product. Name must be
// set; the remaining fields are optional. ExistingImages is the keep-list for
// already-stored images: nil keeps everything, an empty list removes
// everything.
type UpdateProductInput struct {
	Name            *string
	SKU             *string
	Brand           *string
	Category        *string
	Description     *string
	LongDescription *string
	Specifications  *[]string
	Features        *[]string
	Price           *decimal.Decimal
	StockCount      *int
	InStock         *bool
	Rating          *float64
	Featured        *bool
	ExistingImages  *[]string
}

type assetStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (local.StoredFile, error)
	Discard(files []local.StoredFile) error
	Remove(url string) error
}

type cleanupQueue interface {
	Enqueue(ctx context.Context, urls []string) error
}

// service implements the catalog service. Writes keep three stores in step:
// the products table, the product_images table and the files on disk. Files
// land on disk before the transaction opens and are discarded if it aborts;
// files made obsolete by a commit are removed after it, falling back to the
// cleanup queue when the disk delete fails.
type service struct {
	repo     *Repository
	dbClient *db.Client
	assets   assetStore
	cleanup  cleanupQueue
	logg     *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, assets assetStore, cleanup cleanupQueue, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if assets == nil {
		return nil, fmt.Errorf("asset store required")
	}
	if cleanup == nil {
		return nil, fmt.Errorf("cleanup queue required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		assets:   assets,
		cleanup:  cleanup,
		logg:     logg,
	}, nil
}

// Create inserts the product and its images in one transaction. Staged files
// are deleted again if the transaction aborts.
func (s *service) Create(ctx context.Context, input CreateProductInput, files []FileUpload) (*ProductDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	staged, err := s.stageFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	var createdID int64
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product := &models.Product{
			Name:            strings.TrimSpace(input.Name),
			SKU:             input.SKU,
			Brand:           input.Brand,
			Category:        input.Category,
			Description:     input.Description,
			LongDescription: input.LongDescription,
			Specifications:  pq.StringArray(input.Specifications),
			Features:        pq.StringArray(input.Features),
			Price:           input.Price,
			StockCount:      input.StockCount,
			InStock:         input.InStock,
			Rating:          input.Rating,
			Featured:        input.Featured,
		}
		if len(staged) > 0 {
			product.Image = &staged[0].URL
		}
		if err := txRepo.Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		createdID = product.ID

		rows := make([]models.ProductImage, 0, len(staged))
		for _, file := range staged {
			rows = append(rows, models.ProductImage{ProductID: product.ID, URL: file.URL})
		}
		if err := txRepo.AddImages(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product images")
		}
		return nil
	})
	if txErr != nil {
		s.discardStaged(ctx, staged)
		if pkgerrors.As(txErr) != nil {
			return nil, txErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "create product")
	}

	return s.Get(ctx, createdID)
}

// Update mutates product fields and reconciles the image set against the
// keep-list plus any newly uploaded files. The product row is locked for the
// duration so concurrent image writes on the same product serialize. The
// second return value is the number of images removed by the keep-list.
func (s *service) Update(ctx context.Context, id int64, input UpdateProductInput, files []FileUpload) (*ProductDTO, int, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, 0, err
	}

	staged, err := s.stageFiles(ctx, files)
	if err != nil {
		return nil, 0, err
	}

	var removedURLs []string
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		applyUpdate(product, input)

		if input.ExistingImages != nil {
			current, err := txRepo.ListImages(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list product images")
			}
			keep := make(map[string]struct{}, len(*input.ExistingImages))
			for _, url := range *input.ExistingImages {
				keep[url] = struct{}{}
			}
			var removedIDs []int64
			for _, img := range current {
				if _, ok := keep[img.URL]; !ok {
					removedIDs = append(removedIDs, img.ID)
					removedURLs = append(removedURLs, img.URL)
				}
			}
			if err := txRepo.DeleteImagesByIDs(ctx, id, removedIDs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product images")
			}
		}

		rows := make([]models.ProductImage, 0, len(staged))
		for _, file := range staged {
			rows = append(rows, models.ProductImage{ProductID: id, URL: file.URL})
		}
		if err := txRepo.AddImages(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product images")
		}

		main, err := txRepo.MainImageURL(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve main image")
		}
		product.Image = main

		if err := txRepo.Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		return nil
	})
	if txErr != nil {
		s.discardStaged(ctx, staged)
		if pkgerrors.As(txErr) != nil {
			return nil, 0, txErr
		}
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "update product")
	}

	s.removeFiles(ctx, removedURLs)
	dto, err := s.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return dto, len(removedURLs), nil
}

// Delete removes the product with its image rows, then deletes the files.
// A missing product is not an error: the delete affects zero rows and the
// returned image count is zero.
func (s *service) Delete(ctx context.Context, id int64) (int, error) {
	var urls []string
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.FindByIDForUpdate(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		images, err := txRepo.ListImages(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list product images")
		}
		for _, img := range images {
			urls = append(urls, img.URL)
		}

		if err := txRepo.DeleteAllImages(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product images")
		}
		if _, err := txRepo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		return nil
	})
	if txErr != nil {
		if pkgerrors.As(txErr) != nil {
			return 0, txErr
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "delete product")
	}

	s.removeFiles(ctx, urls)
	return len(urls), nil
}

// DeleteImage removes a single image by its public URL and recomputes the
// main image from the surviving rows.
func (s *service) DeleteImage(ctx context.Context, id int64, imageURL string) (*ProductDTO, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "imageUrl is required")
	}

	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		affected, err := txRepo.DeleteImageByURL(ctx, id, imageURL)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product image")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}

		main, err := txRepo.MainImageURL(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve main image")
		}
		product.Image = main

		if err := txRepo.Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		return nil
	})
	if txErr != nil {
		if pkgerrors.As(txErr) != nil {
			return nil, txErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "delete product image")
	}

	s.removeFiles(ctx, []string{imageURL})
	return s.Get(ctx, id)
}

// Get loads one product with its images.
func (s *service) Get(ctx context.Context, id int64) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(product), nil
}

// List returns the full catalog, newest first.
func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return NewProductDTOs(items), nil
}

func (s *service) stageFiles(ctx context.Context, files []FileUpload) ([]local.StoredFile, error) {
	staged := make([]local.StoredFile, 0, len(files))
	for _, file := range files {
		stored, err := s.assets.Save(ctx, file.Filename, file.Content)
		if err != nil {
			s.discardStaged(ctx, staged)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing upload")
		}
		staged = append(staged, stored)
	}
	return staged, nil
}

func (s *service) discardStaged(ctx context.Context, staged []local.StoredFile) {
	if len(staged) == 0 {
		return
	}
	if err := s.assets.Discard(staged); err != nil {
		s.logg.Error(ctx, "discarding staged uploads", err)
	}
}

// removeFiles deletes files whose DB rows are already gone. Failures land in
// the cleanup queue so the worker retries them.
func (s *service) removeFiles(ctx context.Context, urls []string) {
	var failed []string
	for _, url := range urls {
		if err := s.assets.Remove(url); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "url", url), "removing image file failed, queueing for cleanup")
			failed = append(failed, url)
		}
	}
	if len(failed) == 0 {
		return
	}
	if err := s.cleanup.Enqueue(ctx, failed); err != nil {
		s.logg.Error(ctx, "queueing files for cleanup", err)
	}
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.SKU != nil {
		product.SKU = input.SKU
	}
	if input.Brand != nil {
		product.Brand = input.Brand
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.LongDescription != nil {
		product.LongDescription = input.LongDescription
	}
	if input.Specifications != nil {
		product.Specifications = pq.StringArray(*input.Specifications)
	}
	if input.Features != nil {
		product.Features = pq.StringArray(*input.Features)
	}
	if input.Price != nil {
		product.Price = input.Price
	}
	if input.StockCount != nil {
		product.StockCount = *input.StockCount
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}
}

func validateCreateInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.StockCount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock_count cannot be negative")
	}
	return nil
}

func validateUpdateInput(input UpdateProductInput) error {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.StockCount != nil && *input.StockCount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock_count cannot be negative")
	}
	return nil
}
