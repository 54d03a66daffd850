package handlers

import (
	"net/http"

	"mall-backend/middleware"
	"mall-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHandler serves both signed-in and anonymous carts. IdentityMiddleware
// must run first.
type CartHandler struct {
	Store *store.Store
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.Store.GetOrCreateCart(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"omitempty,min=1,max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cart, err := h.Store.AddCartItem(c.Request.Context(), middleware.CurrentIdentity(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err, "Failed to add to cart")
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1,max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cart, err := h.Store.UpdateCartItem(c.Request.Context(), middleware.CurrentIdentity(c), id, req.Quantity)
	if err != nil {
		respondError(c, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cart, err := h.Store.RemoveCartItem(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		respondError(c, err, "Failed to remove item from cart")
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.Store.ClearCart(c.Request.Context(), middleware.CurrentIdentity(c)); err != nil {
		respondError(c, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// ClaimCart merges the anonymous cart named by X-Session-Key into the signed-in
// user's cart.
func (h *CartHandler) ClaimCart(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	key := c.GetHeader(middleware.SessionHeader)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Session-Key header required"})
		return
	}

	cart, err := h.Store.ClaimSessionCart(c.Request.Context(), userID, key)
	if err != nil {
		respondError(c, err, "Failed to claim cart")
		return
	}

	c.JSON(http.StatusOK, cart)
}
