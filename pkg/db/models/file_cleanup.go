package models

import "time"

// FileCleanup queues an upload whose best-effort filesystem deletion failed.
// The cleanup worker drains this table and retries with backoff.
type FileCleanup struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	URL       string    `gorm:"column:url;not null"`
	Attempts  int       `gorm:"column:attempts;not null;default:0"`
	LastError *string   `gorm:"column:last_error"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (FileCleanup) TableName() string { return "file_cleanup" }
