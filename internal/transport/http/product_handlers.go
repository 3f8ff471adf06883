package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store"
)

// ProductHandlers provides HTTP handlers for listing CRUD.
type ProductHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewProductHandlers creates a new product handlers instance.
func NewProductHandlers(st store.Store, logger *zerolog.Logger) *ProductHandlers {
	return &ProductHandlers{
		store: st,
		log:   logger,
	}
}

// ProductRequest represents the create/update request body.
type ProductRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	Category     string   `json:"category"`
	Location     string   `json:"location"`
	Type         string   `json:"type"`
	State        string   `json:"state"`
	Availability string   `json:"availability"`
	ImageURLs    []string `json:"imageUrls"`
}

// ProductResponse represents a listing in API responses.
type ProductResponse struct {
	ID           int64    `json:"id"`
	UserID       int64    `json:"user_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Category     string   `json:"category"`
	Location     string   `json:"location"`
	Type         string   `json:"type"`
	State        string   `json:"state"`
	Availability string   `json:"availability,omitempty"`
	Images       []string `json:"images"`
	SellerName   string   `json:"seller_name,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

func productResponse(p *store.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Category:     p.Category,
		Location:     p.Location,
		Type:         p.Type,
		State:        string(p.State),
		Availability: p.Availability,
		Images:       p.Images,
		SellerName:   p.SellerName,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}

func productResponses(products []*store.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse(p))
	}
	return out
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// CreateProduct handles listing creation.
// POST /api/products
func (h *ProductHandlers) CreateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create product request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and price are required"})
		return
	}

	product, err := h.store.CreateProduct(c.Request.Context(), &store.Product{
		UserID:       userID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		Location:     req.Location,
		Type:         req.Type,
		State:        store.ProductState(req.State),
		Availability: req.Availability,
		Images:       req.ImageURLs,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to create product")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("product_id", product.ID).Int64("user_id", userID).Msg("product created")
	c.JSON(http.StatusCreated, productResponse(product))
}

// ListProducts handles catalog browsing with filters.
// GET /api/products?category=&location=&min_price=&max_price=&search=
func (h *ProductHandlers) ListProducts(c *gin.Context) {
	filter := store.ProductFilter{
		Category: c.Query("category"),
		Location: c.Query("location"),
		Search:   c.Query("search"),
	}

	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid min_price"})
			return
		}
		filter.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid max_price"})
			return
		}
		filter.MaxPrice = &v
	}

	products, err := h.store.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list products")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, productResponses(products))
}

// GetProduct handles single-listing lookup.
// GET /api/products/:id
func (h *ProductHandlers) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.store.GetProductByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
			return
		}
		h.log.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, productResponse(product))
}

// UpdateProduct handles seller edits.
// PUT /api/products/:id
func (h *ProductHandlers) UpdateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid update product request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and price are required"})
		return
	}

	product, err := h.store.UpdateProduct(c.Request.Context(), id, userID, store.ProductUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		Location:     req.Location,
		Type:         req.Type,
		State:        store.ProductState(req.State),
		Availability: req.Availability,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found or not yours"})
			return
		}
		h.log.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, productResponse(product))
}

// DeleteProduct handles listing removal.
// DELETE /api/products/:id
func (h *ProductHandlers) DeleteProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteProduct(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found or not yours"})
			return
		}
		h.log.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("product_id", id).Int64("user_id", userID).Msg("product deleted")
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}
