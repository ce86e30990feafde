package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-auth-service/internal/adapter/gin/middleware"
	"user-auth-service/internal/usecase/user"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// RegisterRequest represents the HTTP request body for registering a user
type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	CPF      string `json:"cpf"`
	Phone    string `json:"phone"`
}

// UpdateUserRequest represents the HTTP request body for updating a user
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
}

// PasswordResetRequest represents the HTTP request body for requesting
// a password reset
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// NewPasswordRequest represents the HTTP request body for completing a
// password reset
type NewPasswordRequest struct {
	Password string `json:"password"`
}

// CheckExistsRequest represents the HTTP request body for the
// registration pre-check
type CheckExistsRequest struct {
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
}

// CheckExistsResponse represents the HTTP response for the registration
// pre-check
type CheckExistsResponse struct {
	CPFExists   bool `json:"cpf_exists"`
	PhoneExists bool `json:"phone_exists"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

// Register handles POST /v1/users
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	h.log.Info("Register request", zap.String("email", req.Email), zap.String("username", req.Username))

	resp, err := h.uc.Register(c.Request.Context(), user.RegisterRequest{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		CPF:      req.CPF,
		Phone:    req.Phone,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(resp))
}

// GetMe handles GET /v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "could not validate credentials",
		})
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: actor.ID, Actor: actor})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	actor, _ := middleware.GetActor(c)

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id, Actor: actor})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// UpdateUser handles PUT /v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}
	actor, _ := middleware.GetActor(c)

	h.log.Info("UpdateUser request", zap.Int64("id", id), zap.Int64("actor_id", actor.ID))

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:       id,
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
		Active:   req.Active,
		Actor:    actor,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// DeleteUser handles DELETE /v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	actor, _ := middleware.GetActor(c)

	h.log.Info("DeleteUser request", zap.Int64("id", id), zap.Int64("actor_id", actor.ID))

	if err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id, Actor: actor}); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	query := c.DefaultQuery("query", "")
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")

	page, err := strconv.ParseInt(pageStr, 10, 64)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Query: query,
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i := range resp.Users {
		users[i] = toUserResponse(&resp.Users[i])
	}

	var pagination *Pagination
	if resp.Pagination != nil {
		pagination = &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}

	c.JSON(http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: pagination,
	})
}

// VerifyEmail handles GET /v1/users/verify-email/:token
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	if err := h.uc.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "email verified"})
}

// RequestPasswordReset handles POST /v1/users/password-reset
func (h *UserHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	if err := h.uc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		handleError(c, h.log, err)
		return
	}

	// Always accepted, the response never discloses whether the
	// email is registered.
	c.JSON(http.StatusAccepted, MessageResponse{
		Message: "if the email is registered, a reset link has been sent",
	})
}

// ResetPassword handles POST /v1/users/password-reset/:token
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req NewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	if err := h.uc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}

// CheckExists handles POST /v1/users/check
func (h *UserHandler) CheckExists(c *gin.Context) {
	var req CheckExistsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, err)
		return
	}

	resp, err := h.uc.CheckExists(c.Request.Context(), user.CheckExistsRequest{
		CPF:   req.CPF,
		Phone: req.Phone,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, CheckExistsResponse{
		CPFExists:   resp.CPFExists,
		PhoneExists: resp.PhoneExists,
	})
}

// parseIDParam parses the :id path parameter, responding with 400 when
// it is not numeric.
func parseIDParam(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "ID must be a valid number",
		})
		return 0, false
	}
	return id, true
}
