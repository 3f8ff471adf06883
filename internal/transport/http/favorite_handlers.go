package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store"
)

// FavoriteHandlers provides HTTP handlers for per-user favorites.
type FavoriteHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewFavoriteHandlers creates a new favorite handlers instance.
func NewFavoriteHandlers(st store.Store, logger *zerolog.Logger) *FavoriteHandlers {
	return &FavoriteHandlers{
		store: st,
		log:   logger,
	}
}

// AddFavorite marks a product as a favorite. Idempotent.
// PUT /api/products/:id/favorite
func (h *FavoriteHandlers) AddFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.AddFavorite(c.Request.Context(), userID, id); err != nil {
		h.log.Error().Err(err).Int64("product_id", id).Msg("failed to add favorite")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": true})
}

// RemoveFavorite unmarks a favorite. Idempotent.
// DELETE /api/products/:id/favorite
func (h *FavoriteHandlers) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.RemoveFavorite(c.Request.Context(), userID, id); err != nil {
		h.log.Error().Err(err).Int64("product_id", id).Msg("failed to remove favorite")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": false})
}

// ListFavorites returns the user's favorited listings that are still visible.
// GET /api/favorites
func (h *FavoriteHandlers) ListFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	products, err := h.store.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list favorites")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, productResponses(products))
}
