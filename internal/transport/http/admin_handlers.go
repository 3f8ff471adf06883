package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store"
)

// AdminHandlers provides moderation endpoints for admins and moderators.
type AdminHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewAdminHandlers creates a new admin handlers instance.
func NewAdminHandlers(st store.Store, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{
		store: st,
		log:   logger,
	}
}

// UpdateRoleRequest represents the role change request body.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateStatusRequest represents the status change request body.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStateRequest represents the product moderation request body.
type UpdateStateRequest struct {
	State string `json:"state" binding:"required"`
}

// ListUsers returns every account.
// GET /api/admin/users
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, userResponse(user))
	}
	c.JSON(http.StatusOK, response)
}

// UpdateUserRole promotes or demotes between user and moderator.
// PUT /api/admin/users/:id/role
func (h *AdminHandlers) UpdateUserRole(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "role is required"})
		return
	}

	role := store.Role(req.Role)
	if role != store.RoleUser && role != store.RoleModerator {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "role must be 'user' or 'moderator'"})
		return
	}

	if id == adminID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "cannot change your own role"})
		return
	}

	user, err := h.store.UpdateUserRole(c.Request.Context(), id, role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found or is an admin"})
			return
		}
		h.log.Error().Err(err).Int64("target_id", id).Msg("failed to update role")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("target_id", id).Str("role", req.Role).Int64("admin_id", adminID).Msg("role updated")
	c.JSON(http.StatusOK, userResponse(user))
}

// UpdateUserStatus activates or suspends an account.
// PUT /api/admin/users/:id/status
func (h *AdminHandlers) UpdateUserStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status is required"})
		return
	}

	status := store.Status(req.Status)
	if status != store.StatusActive && status != store.StatusSuspended {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status must be 'active' or 'suspended'"})
		return
	}

	user, err := h.store.UpdateUserStatus(c.Request.Context(), id, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found or is an admin"})
			return
		}
		h.log.Error().Err(err).Int64("target_id", id).Msg("failed to update status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("target_id", id).Str("status", req.Status).Msg("status updated")
	c.JSON(http.StatusOK, userResponse(user))
}

// UpdateProductState hides, suspends, or restores a listing.
// PUT /api/admin/products/:id/state
func (h *AdminHandlers) UpdateProductState(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "state is required"})
		return
	}

	state := store.ProductState(req.State)
	switch state {
	case store.ProductStateVisible, store.ProductStateHidden, store.ProductStateSuspended:
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "state must be 'visible', 'oculto' or 'suspendido'"})
		return
	}

	product, err := h.store.UpdateProductState(c.Request.Context(), id, state)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
			return
		}
		h.log.Error().Err(err).Int64("product_id", id).Msg("failed to moderate product")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("product_id", id).Str("state", req.State).Msg("product state updated")
	c.JSON(http.StatusOK, productResponse(product))
}
