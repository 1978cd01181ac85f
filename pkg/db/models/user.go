package models

import "time"

// User represents a shopper account.
type User struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FullName     string    `gorm:"column:full_name;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
