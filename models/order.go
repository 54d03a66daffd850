package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID    *uuid.UUID  `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Customer      *Customer   `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty" validate:"-"`
	DateOrdered   time.Time   `gorm:"not null" json:"date_ordered"`
	Complete      bool        `gorm:"not null;default:false" json:"complete"` // paid and fulfilled
	TransactionID *string     `gorm:"size:100" json:"transaction_id" validate:"omitempty,max=100"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Payments      []Payment   `gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL" json:"payments,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Product     *Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"product" validate:"-"`
	ProductName string     `gorm:"size:255" json:"product_name" validate:"max=255"` // Snapshot of product name at time of order
	Quantity    int        `gorm:"not null;default:1" json:"quantity" validate:"min=1,max=10000"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.DateOrdered.IsZero() {
		o.DateOrdered = time.Now()
	}
	return nil
}

func (o *Order) BeforeSave(tx *gorm.DB) error {
	return validateStruct(o)
}

// CartTotal sums price × quantity over the loaded items.
func (o Order) CartTotal() decimal.Decimal {
	total, _ := SumLines(o.Items)
	return total
}

// CartItems sums the quantities of the loaded items.
func (o Order) CartItems() int {
	_, count := SumLines(o.Items)
	return count
}

// String labels the order with its customer's username, or Guest when there is none.
func (o Order) String() string {
	by := "Guest"
	if o.Customer != nil {
		by = o.Customer.String()
	}
	return fmt.Sprintf("Order %s by %s", o.ID, by)
}

func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
	return json.Marshal(struct {
		order
		CartTotal decimal.Decimal `json:"cart_total"`
		CartItems int             `json:"cart_items"`
		Label     string          `json:"label"`
	}{order(o), o.CartTotal(), o.CartItems(), o.String()})
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) BeforeSave(tx *gorm.DB) error {
	if i.Quantity == 0 {
		i.Quantity = 1
	}
	return validateStruct(i)
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return lineTotal(i.Product, i.Quantity)
}

func (i OrderItem) LineQuantity() int {
	return i.Quantity
}

// Available is false once the referenced product has been deleted.
func (i OrderItem) Available() bool {
	return i.Product != nil
}

func (i OrderItem) String() string {
	name := i.ProductName
	if i.Product != nil {
		name = i.Product.Name
	}
	return fmt.Sprintf("%d of %s", i.Quantity, name)
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	type orderItem OrderItem
	return json.Marshal(struct {
		orderItem
		LineTotal decimal.Decimal `json:"line_total"`
		Available bool            `json:"available"`
	}{orderItem(i), i.LineTotal(), i.Available()})
}
