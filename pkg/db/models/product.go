package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing. Image mirrors the URL of the
// image row with the smallest ID so single-image consumers keep working.
type Product struct {
	ID              int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Name            string           `gorm:"column:name;not null"`
	SKU             *string          `gorm:"column:sku"`
	Brand           *string          `gorm:"column:brand"`
	Category        *string          `gorm:"column:category"`
	Description     *string          `gorm:"column:description"`
	LongDescription *string          `gorm:"column:long_description"`
	Specifications  pq.StringArray   `gorm:"column:specifications;type:text[]"`
	Features        pq.StringArray   `gorm:"column:features;type:text[]"`
	Price           *decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	StockCount      int              `gorm:"column:stock_count;not null;default:0"`
	InStock         bool             `gorm:"column:in_stock;not null;default:true"`
	Rating          float64          `gorm:"column:rating;not null;default:0"`
	Featured        bool             `gorm:"column:featured;not null;default:false"`
	Image           *string          `gorm:"column:image"`
	Images          []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
