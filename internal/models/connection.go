package models

import (
	"time"
)

// Connection is the type tag attached to an integration record. It only
// records which provider the owning record belongs to.
type Connection struct {
	ID       string  `gorm:"primaryKey"`
	UserID   string  `gorm:"not null;index"`
	Type     string  `gorm:"not null;index"` // "Notion"
	NotionID *string `gorm:"index"`

	CreatedAt time.Time
}

// TableName overrides the table name used by Connection to `connections`
func (Connection) TableName() string {
	return "connections"
}
