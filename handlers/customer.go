package handlers

import (
	"net/http"

	"mall-backend/middleware"
	"mall-backend/store"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	Store *store.Store
}

func (h *CustomerHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	customer, err := h.Store.GetCustomerByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Address     string `json:"address" binding:"max=255"`
		PhoneNumber string `json:"phone_number" binding:"max=15"`
		City        string `json:"city" binding:"max=50"`
		Country     string `json:"country" binding:"max=50"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	customer, err := h.Store.UpsertCustomer(c.Request.Context(), userID, store.CustomerFields{
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		City:        req.City,
		Country:     req.Country,
	})
	if err != nil {
		respondError(c, err, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer profile; their orders become guest orders.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Store.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

func (h *CustomerHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Store.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
