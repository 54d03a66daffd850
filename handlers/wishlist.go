package handlers

import (
	"net/http"

	"mall-backend/middleware"
	"mall-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WishlistHandler struct {
	Store *store.Store
}

func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.Store.ListWishlist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch wishlist")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// AddToWishlist answers 201 for a new entry and 200 when the product was
// already saved.
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	entry, created, err := h.Store.AddToWishlist(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		respondError(c, err, "Failed to add to wishlist")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, entry)
}

func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	if err := h.Store.RemoveFromWishlist(c.Request.Context(), userID, productID); err != nil {
		respondError(c, err, "Failed to remove from wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
}
