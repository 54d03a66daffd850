package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusCompleted PaymentStatus = "Completed"
)

type Payment struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID           *uuid.UUID      `gorm:"type:uuid;index" json:"order_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount" validate:"money"`
	TransactionID     string          `gorm:"size:100;uniqueIndex;not null" json:"transaction_id" validate:"required,max=100"`
	ProviderPaymentID *string         `gorm:"size:100" json:"provider_payment_id" validate:"omitempty,max=100"`
	Status            PaymentStatus   `gorm:"size:50;not null;default:Pending" json:"payment_status" validate:"oneof=Pending Failed Completed"`
	DatePaid          time.Time       `gorm:"not null" json:"date_paid"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.DatePaid.IsZero() {
		p.DatePaid = time.Now()
	}
	return nil
}

func (p *Payment) BeforeSave(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = PaymentStatusPending
	}
	return validateStruct(p)
}

func (p Payment) String() string {
	order := "none"
	if p.OrderID != nil {
		order = p.OrderID.String()
	}
	return fmt.Sprintf("Payment %s for Order %s", p.TransactionID, order)
}

// PaymentTransitions is the payment status state machine. A failed attempt may be retried;
// a completed payment is final.
var PaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusFailed:    {PaymentStatusPending},
	PaymentStatusCompleted: {},
}

// IsValidPaymentStatus reports whether s is one of the known statuses.
func IsValidPaymentStatus(s PaymentStatus) bool {
	_, ok := PaymentTransitions[s]
	return ok
}

// IsValidPaymentTransition checks if a status transition is allowed.
func IsValidPaymentTransition(from, to PaymentStatus) bool {
	allowed, exists := PaymentTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
