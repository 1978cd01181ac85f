package products

import (
	"time"

	"github.com/ammargroup/storefront-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog representation served to the storefront.
type ProductDTO struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	SKU             *string          `json:"sku"`
	Brand           *string          `json:"brand"`
	Category        *string          `json:"category"`
	Description     *string          `json:"description"`
	LongDescription *string          `json:"long_description"`
	Specifications  []string         `json:"specifications"`
	Features        []string         `json:"features"`
	Price           *decimal.Decimal `json:"price"`
	StockCount      int              `json:"stock_count"`
	InStock         bool             `json:"in_stock"`
	Rating          float64          `json:"rating"`
	Featured        bool             `json:"featured"`
	Image           *string          `json:"image"`
	Images          []string         `json:"images"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewProductDTO maps the model and its preloaded images to the API shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	images := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		images = append(images, img.URL)
	}
	return &ProductDTO{
		ID:              product.ID,
		Name:            product.Name,
		SKU:             product.SKU,
		Brand:           product.Brand,
		Category:        product.Category,
		Description:     product.Description,
		LongDescription: product.LongDescription,
		Specifications:  append([]string{}, product.Specifications...),
		Features:        append([]string{}, product.Features...),
		Price:           product.Price,
		StockCount:      product.StockCount,
		InStock:         product.InStock,
		Rating:          product.Rating,
		Featured:        product.Featured,
		Image:           product.Image,
		Images:          images,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
}

// NewProductDTOs maps a list of products.
func NewProductDTOs(productsList []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(productsList))
	for i := range productsList {
		out = append(out, *NewProductDTO(&productsList[i]))
	}
	return out
}
