package handlers

import (
	"errors"
	"io"
	"net/http"

	"mall-backend/middleware"
	"mall-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	Store *store.Store
}

// Checkout places an order from the caller's cart.
func (h *OrderHandler) Checkout(c *gin.Context) {
	order, err := h.Store.Checkout(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err, "Failed to place order")
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrders lists the caller's own orders.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, err := h.Store.ListOrders(c.Request.Context(), &userID)
	if err != nil {
		respondError(c, err, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one of the caller's orders; admins may read any order.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var scope *uuid.UUID
	if !middleware.IsAdmin(c) {
		scope = &userID
	}
	order, err := h.Store.GetOrder(c.Request.Context(), id, scope)
	if err != nil {
		respondError(c, err, "Failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	orders, err := h.Store.ListOrders(c.Request.Context(), nil)
	if err != nil {
		respondError(c, err, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		TransactionID string `json:"transaction_id" binding:"max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	order, err := h.Store.CompleteOrder(c.Request.Context(), id, req.TransactionID)
	if err != nil {
		respondError(c, err, "Failed to complete order")
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Store.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
