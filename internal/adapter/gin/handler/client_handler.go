package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-auth-service/internal/adapter/gin/middleware"
	"user-auth-service/internal/usecase/apiclient"
)

// ClientHandler handles HTTP requests for authorized client management
type ClientHandler struct {
	uc  apiclient.Usecase
	log *zap.Logger
}

// NewClientHandler creates a new ClientHandler instance
func NewClientHandler(uc apiclient.Usecase, log *zap.Logger) *ClientHandler {
	return &ClientHandler{
		uc:  uc,
		log: log,
	}
}

// CreateClientRequest represents the HTTP request body for authorizing
// a new external system
type CreateClientRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateClientRequest represents the HTTP request body for updating an
// authorized client
type UpdateClientRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// ClientResponse represents the HTTP response for an authorized client
type ClientResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}

// CreatedClientResponse carries the new client together with its API
// key. The key is only ever returned here.
type CreatedClientResponse struct {
	ClientResponse
	Token string `json:"token"`
}

// ListClientsResponse represents the HTTP response for listing
// authorized clients
type ListClientsResponse struct {
	Clients []ClientResponse `json:"clients"`
}

func toClientResponse(cl *apiclient.ClientResponse) ClientResponse {
	return ClientResponse{
		ID:          cl.ID,
		Name:        cl.Name,
		Description: cl.Description,
		Active:      cl.Active,
		CreatedAt:   cl.CreatedAt,
		LastSeenAt:  cl.LastSeenAt,
	}
}

// CreateClient handles POST /v1/clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	h.log.Info("CreateClient request", zap.String("name", req.Name))

	resp, err := h.uc.CreateClient(c.Request.Context(), apiclient.CreateClientRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, CreatedClientResponse{
		ClientResponse: toClientResponse(&resp.Client),
		Token:          resp.Token,
	})
}

// GetClient handles GET /v1/clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.uc.GetClient(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toClientResponse(resp))
}

// UpdateClient handles PUT /v1/clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	resp, err := h.uc.UpdateClient(c.Request.Context(), apiclient.UpdateClientRequest{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toClientResponse(resp))
}

// DeleteClient handles DELETE /v1/clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	h.log.Info("DeleteClient request", zap.Int64("id", id))

	if err := h.uc.DeleteClient(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListClients handles GET /v1/clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	resp, err := h.uc.ListClients(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	clients := make([]ClientResponse, len(resp))
	for i := range resp {
		clients[i] = toClientResponse(&resp[i])
	}

	c.JSON(http.StatusOK, ListClientsResponse{Clients: clients})
}

// Validate handles POST /v1/clients/validate. The API key middleware
// has already validated the key and recorded the contact, the handler
// just echoes the client back.
func (h *ClientHandler) Validate(c *gin.Context) {
	client, ok := middleware.GetAPIClient(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "missing API key",
		})
		return
	}

	c.JSON(http.StatusOK, toClientResponse(client))
}
