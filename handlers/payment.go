package handlers

import (
	"net/http"

	"mall-backend/models"
	"mall-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	Store *store.Store
}

func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req struct {
		OrderID           uuid.UUID        `json:"order_id" binding:"required"`
		Amount            *decimal.Decimal `json:"amount"`
		TransactionID     string           `json:"transaction_id" binding:"required,max=100"`
		ProviderPaymentID *string          `json:"provider_payment_id" binding:"omitempty,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	payment, err := h.Store.RecordPayment(c.Request.Context(), store.PaymentInput{
		OrderID:           req.OrderID,
		Amount:            *req.Amount,
		TransactionID:     req.TransactionID,
		ProviderPaymentID: req.ProviderPaymentID,
	})
	if err != nil {
		respondError(c, err, "Failed to record payment")
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) GetOrderPayments(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.Store.ListPayments(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err, "Failed to fetch payments")
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.PaymentStatus `json:"status" binding:"required,oneof=Pending Failed Completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	payment, err := h.Store.UpdatePaymentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err, "Failed to update payment status")
		return
	}

	c.JSON(http.StatusOK, payment)
}

// GetPaymentTransitions exposes the allowed status moves for admin tooling.
func (h *PaymentHandler) GetPaymentTransitions(c *gin.Context) {
	c.JSON(http.StatusOK, models.PaymentTransitions)
}
