package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-authgate/connectgate/internal/core"
	"github.com/go-authgate/connectgate/internal/models"
	"github.com/go-authgate/connectgate/internal/store"
)

// UpsertResult reports what ConnectNotion did
type UpsertResult string

const (
	UpsertCreated UpsertResult = "created"
	UpsertUpdated UpsertResult = "updated"
	UpsertSkipped UpsertResult = "skipped"

	providerNotion = "notion"
)

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrUserRequired       = errors.New("user id is required")
)

// NotionConnectInput carries the values returned by Notion's OAuth flow
// together with the id of the signed-in user.
type NotionConnectInput struct {
	AccessToken   string
	WorkspaceID   string
	WorkspaceIcon string
	WorkspaceName string
	DatabaseID    string
	UserID        string
}

type ConnectionService struct {
	store   *store.Store
	metrics core.Recorder
}

func NewConnectionService(s *store.Store, m core.Recorder) *ConnectionService {
	return &ConnectionService{
		store:   s,
		metrics: m,
	}
}

// ConnectNotion records the user's Notion workspace connection. An empty
// access token means the OAuth flow produced nothing and is a no-op.
func (s *ConnectionService) ConnectNotion(
	ctx context.Context,
	in NotionConnectInput,
) (UpsertResult, error) {
	if in.AccessToken == "" {
		s.metrics.RecordConnectionUpsert(providerNotion, string(UpsertSkipped))
		return UpsertSkipped, nil
	}
	if in.UserID == "" {
		return "", ErrUserRequired
	}

	_, created, err := s.store.UpsertNotionConnection(ctx, &models.NotionConnection{
		UserID:        in.UserID,
		AccessToken:   in.AccessToken,
		WorkspaceID:   in.WorkspaceID,
		WorkspaceName: in.WorkspaceName,
		WorkspaceIcon: in.WorkspaceIcon,
		DatabaseID:    in.DatabaseID,
	})
	if err != nil {
		s.metrics.RecordConnectionUpsert(providerNotion, "error")
		return "", fmt.Errorf("failed to upsert notion connection: %w", err)
	}

	result := UpsertUpdated
	if created {
		result = UpsertCreated
	}
	s.metrics.RecordConnectionUpsert(providerNotion, string(result))
	log.Printf("[Notion] connection %s: user=%s workspace=%s", result, in.UserID, in.WorkspaceID)

	return result, nil
}

// ListConnections returns the connection type tags owned by userID
func (s *ConnectionService) ListConnections(
	ctx context.Context,
	userID string,
) ([]models.Connection, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.store.ListConnectionsByUserID(ctx, userID)
}

// GetNotionConnection returns the user's Notion connection, or
// ErrConnectionNotFound when the user never connected Notion
func (s *ConnectionService) GetNotionConnection(
	ctx context.Context,
	userID string,
) (*models.NotionConnection, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	conn, err := s.store.GetNotionConnectionByUserID(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrConnectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// UpdateConnectionGauges refreshes the per-type connection gauges. A failed
// count leaves the gauges untouched and is returned for the caller to log.
func (s *ConnectionService) UpdateConnectionGauges(ctx context.Context) error {
	counts, err := s.store.CountConnectionsByType(ctx)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("count_connections")
		return fmt.Errorf("failed to count connections: %w", err)
	}

	// Types with no rows still report zero
	if _, ok := counts[models.ConnectionTypeNotion]; !ok {
		counts[models.ConnectionTypeNotion] = 0
	}
	for connectionType, count := range counts {
		s.metrics.SetConnectionsCount(connectionType, int(count))
	}
	return nil
}
