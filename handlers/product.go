package handlers

import (
	"net/http"
	"strconv"

	"mall-backend/models"
	"mall-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	Store *store.Store
}

type productRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Description string           `json:"description" binding:"required"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	Image       *string          `json:"image" binding:"omitempty,max=255"`
}

func (r productRequest) apply(p *models.Product) {
	p.Name = r.Name
	p.Description = r.Description
	p.Price = *r.Price
	p.CategoryID = r.CategoryID
	p.Category = nil
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	p.Image = r.Image
}

func bindProduct(c *gin.Context) (productRequest, bool) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return req, false
	}
	if req.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price is required"})
		return req, false
	}
	return req, true
}

// GetProducts supports ?category_id= and ?in_stock=true filters.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filter store.ProductFilter
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("in_stock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid in_stock"})
			return
		}
		filter.InStockOnly = inStock
	}

	products, err := h.Store.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.Store.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	req, ok := bindProduct(c)
	if !ok {
		return
	}

	var product models.Product
	req.apply(&product)
	if err := h.Store.CreateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err, "Failed to create product")
		return
	}

	created, err := h.Store.GetProduct(c.Request.Context(), product.ID)
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.Store.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}

	req, ok := bindProduct(c)
	if !ok {
		return
	}
	req.apply(product)

	if err := h.Store.UpdateProduct(c.Request.Context(), product); err != nil {
		respondError(c, err, "Failed to update product")
		return
	}

	updated, err := h.Store.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Store.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
