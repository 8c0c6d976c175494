package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-authgate/connectgate/internal/middleware"
	"github.com/go-authgate/connectgate/internal/services"

	"github.com/gin-gonic/gin"
)

// ConnectionHandler exposes the signed-in user's connections
type ConnectionHandler struct {
	connectionService *services.ConnectionService
}

func NewConnectionHandler(cs *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: cs}
}

// notionConnectRequest is the body of POST /api/connections/notion
type notionConnectRequest struct {
	AccessToken   string `json:"access_token"`
	WorkspaceID   string `json:"workspace_id"`
	WorkspaceIcon string `json:"workspace_icon"`
	WorkspaceName string `json:"workspace_name"`
	DatabaseID    string `json:"database_id"`
}

// notionConnectionResponse omits the access token on purpose
type notionConnectionResponse struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	WorkspaceName string    `json:"workspace_name"`
	WorkspaceIcon string    `json:"workspace_icon"`
	DatabaseID    string    `json:"database_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type connectionResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectNotion stores the caller's Notion workspace connection
func (h *ConnectionHandler) ConnectNotion(c *gin.Context) {
	var req notionConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "Request body must be a JSON object",
		})
		return
	}

	_, err := h.connectionService.ConnectNotion(c.Request.Context(), services.NotionConnectInput{
		AccessToken:   req.AccessToken,
		WorkspaceID:   req.WorkspaceID,
		WorkspaceIcon: req.WorkspaceIcon,
		WorkspaceName: req.WorkspaceName,
		DatabaseID:    req.DatabaseID,
		UserID:        middleware.UserIDFromContext(c),
	})
	if err != nil {
		log.Printf("[Notion] Failed to save connection: %v", err)
		if errors.Is(err, services.ErrUserRequired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetNotionConnection returns the caller's Notion workspace connection
func (h *ConnectionHandler) GetNotionConnection(c *gin.Context) {
	conn, err := h.connectionService.GetNotionConnection(
		c.Request.Context(),
		middleware.UserIDFromContext(c),
	)
	switch {
	case errors.Is(err, services.ErrConnectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "Notion is not connected",
		})
		return
	case errors.Is(err, services.ErrUserRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	case err != nil:
		log.Printf("[Notion] Failed to load connection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, notionConnectionResponse{
		ID:            conn.ID,
		WorkspaceID:   conn.WorkspaceID,
		WorkspaceName: conn.WorkspaceName,
		WorkspaceIcon: conn.WorkspaceIcon,
		DatabaseID:    conn.DatabaseID,
		CreatedAt:     conn.CreatedAt,
		UpdatedAt:     conn.UpdatedAt,
	})
}

// ListConnections returns the caller's connection type tags
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	conns, err := h.connectionService.ListConnections(
		c.Request.Context(),
		middleware.UserIDFromContext(c),
	)
	if err != nil {
		log.Printf("[Connections] Failed to list connections: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	resp := make([]connectionResponse, 0, len(conns))
	for _, conn := range conns {
		resp = append(resp, connectionResponse{
			ID:        conn.ID,
			Type:      conn.Type,
			CreatedAt: conn.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"connections": resp})
}
