package models

import "time"

// ProductImage stores one uploaded image for a product. Gallery order is
// ascending ID; the smallest ID is the main image by convention.
type ProductImage struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64     `gorm:"column:product_id;not null;index"`
	URL       string    `gorm:"column:image_url;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProductImage) TableName() string { return "product_images" }
