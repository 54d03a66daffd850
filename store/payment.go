package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mall-backend/events"
	"mall-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentInput struct {
	OrderID           uuid.UUID
	Amount            decimal.Decimal
	TransactionID     string
	ProviderPaymentID *string
}

type paymentEvent struct {
	PaymentID     uuid.UUID            `json:"payment_id"`
	OrderID       *uuid.UUID           `json:"order_id"`
	TransactionID string               `json:"transaction_id"`
	Amount        decimal.Decimal      `json:"amount"`
	From          models.PaymentStatus `json:"from"`
	To            models.PaymentStatus `json:"to"`
}

// RecordPayment stores a Pending payment against an order.
func (s *Store) RecordPayment(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	if _, err := s.GetOrder(ctx, in.OrderID, nil); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db(ctx).Model(&models.Payment{}).
		Where("transaction_id = ?", in.TransactionID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check transaction id: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateTransaction
	}

	orderID := in.OrderID
	payment := models.Payment{
		OrderID:           &orderID,
		Amount:            in.Amount,
		TransactionID:     in.TransactionID,
		ProviderPaymentID: in.ProviderPaymentID,
		Status:            models.PaymentStatusPending,
	}
	if err := s.db(ctx).Create(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTransaction
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	return &payment, nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "payment")
	}
	return &payment, nil
}

func (s *Store) ListPayments(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	if _, err := s.GetOrder(ctx, orderID, nil); err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := s.db(ctx).Where("order_id = ?", orderID).Order("date_paid ASC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// UpdatePaymentStatus moves a payment along the transition table. Completing a
// payment stamps its paid date.
func (s *Store) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Payment, error) {
	if !models.IsValidPaymentStatus(status) {
		return nil, fmt.Errorf("%w %q", ErrUnknownPaymentStatus, status)
	}

	var payment models.Payment
	var from models.PaymentStatus
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&payment, "id = ?", id).Error; err != nil {
			return lookupErr(err, "payment")
		}
		from = payment.Status
		if !models.IsValidPaymentTransition(from, status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, status)
		}
		payment.Status = status
		if status == models.PaymentStatusCompleted {
			payment.DatePaid = time.Now()
		}
		return tx.Omit(clause.Associations).Save(&payment).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicPaymentStatusChanged, payment.ID, paymentEvent{
		PaymentID:     payment.ID,
		OrderID:       payment.OrderID,
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		From:          from,
		To:            status,
	})
	return &payment, nil
}
