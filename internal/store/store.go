package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-authgate/connectgate/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

// New opens the database and migrates the connection tables
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	if dialector.Name() == "sqlite" {
		// A single connection keeps ":memory:" databases shared and avoids SQLITE_BUSY
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&models.NotionConnection{},
		&models.Connection{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Notion connection operations

// UpsertNotionConnection stores conn as the canonical Notion connection for
// conn.UserID or conn.AccessToken. A record matching either key is updated in
// place and keeps its type tag; otherwise a new record is inserted together
// with a "Notion" Connection tag. The returned bool reports an insert.
//
// An update whose user and token belong to two different records violates a
// unique index and returns gorm.ErrDuplicatedKey; both records stay as they were.
func (s *Store) UpsertNotionConnection(
	ctx context.Context,
	conn *models.NotionConnection,
) (*models.NotionConnection, bool, error) {
	if conn.UserID == "" {
		return nil, false, ErrUserIDRequired
	}

	record, inserted, err := s.upsertNotionConnection(ctx, conn)
	if inserted && errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent insert claimed the user or token first. The unique
		// indexes guarantee the second pass finds that row.
		log.Printf("[Store] Notion connection insert raced for user=%s, retrying lookup", conn.UserID)
		record, inserted, err = s.upsertNotionConnection(ctx, conn)
	}
	if err != nil {
		return nil, false, err
	}
	return record, inserted, nil
}

// upsertNotionConnection runs one lookup-then-write pass. The bool reports
// whether the pass took the insert branch, also when the insert failed.
func (s *Store) upsertNotionConnection(
	ctx context.Context,
	conn *models.NotionConnection,
) (*models.NotionConnection, bool, error) {
	var (
		record  models.NotionConnection
		created bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? OR access_token = ?", conn.UserID, conn.AccessToken).
			Order("created_at ASC").
			First(&record).Error

		switch {
		case err == nil:
			// Map updates write empty strings too, matching a full overwrite
			if err := tx.Model(&record).Updates(map[string]any{
				"workspace_icon": conn.WorkspaceIcon,
				"access_token":   conn.AccessToken,
				"workspace_id":   conn.WorkspaceID,
				"workspace_name": conn.WorkspaceName,
				"database_id":    conn.DatabaseID,
			}).Error; err != nil {
				return err
			}
			record.WorkspaceIcon = conn.WorkspaceIcon
			record.AccessToken = conn.AccessToken
			record.WorkspaceID = conn.WorkspaceID
			record.WorkspaceName = conn.WorkspaceName
			record.DatabaseID = conn.DatabaseID
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.NotionConnection{
				ID:            uuid.New().String(),
				UserID:        conn.UserID,
				AccessToken:   conn.AccessToken,
				WorkspaceID:   conn.WorkspaceID,
				WorkspaceName: conn.WorkspaceName,
				WorkspaceIcon: conn.WorkspaceIcon,
				DatabaseID:    conn.DatabaseID,
				Connections: []models.Connection{
					{
						ID:     uuid.New().String(),
						UserID: conn.UserID,
						Type:   models.ConnectionTypeNotion,
					},
				},
			}
			created = true
			return tx.Create(&record).Error

		default:
			return fmt.Errorf("failed to query notion connection: %w", err)
		}
	})
	if err != nil {
		return nil, created, err
	}

	return &record, created, nil
}

// GetNotionConnectionByUserID returns the user's Notion connection with its type tags
func (s *Store) GetNotionConnectionByUserID(
	ctx context.Context,
	userID string,
) (*models.NotionConnection, error) {
	var conn models.NotionConnection
	err := s.db.WithContext(ctx).
		Preload("Connections").
		Where("user_id = ?", userID).
		First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// Connection tag operations

// ListConnectionsByUserID returns all connection tags owned by a user, newest first
func (s *Store) ListConnectionsByUserID(
	ctx context.Context,
	userID string,
) ([]models.Connection, error) {
	var conns []models.Connection
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}

// CountConnectionsByType returns connection tag counts keyed by type
func (s *Store) CountConnectionsByType(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Type  string
		Count int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Connection{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

// Health checks the database connection
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
