package models

import (
	"time"
)

// ConnectionTypeNotion tags connections created by the Notion integration
const ConnectionTypeNotion = "Notion"

// NotionConnection holds the credentials and workspace metadata for one
// user's Notion integration. UserID and AccessToken are each unique, and
// either one identifies the record.
type NotionConnection struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;uniqueIndex:idx_notion_user"`
	AccessToken string `gorm:"not null;size:512;uniqueIndex:idx_notion_access_token"`

	// Workspace metadata (overwritten on every reconnect)
	WorkspaceID   string
	WorkspaceName string
	WorkspaceIcon string `gorm:"type:text"`
	DatabaseID    string // Target Notion database

	// Created once with the record, never updated
	Connections []Connection `gorm:"foreignKey:NotionID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name used by NotionConnection to `notion_connections`
func (NotionConnection) TableName() string {
	return "notion_connections"
}
