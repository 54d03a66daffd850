package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrCartOwner is returned when a cart is saved with both or neither of user and session key.
var ErrCartOwner = errors.New("cart must belong to exactly one of a user or a session")

type Cart struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User       *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	SessionKey *string    `gorm:"size:40;index" json:"session_key,omitempty" validate:"omitempty,max=40"`
	Complete   bool       `gorm:"not null;default:false" json:"complete"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time  `json:"date_created"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// MaxLineQuantity bounds the quantity of a single cart or order line.
const MaxLineQuantity = 10000

type CartItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CartID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product" json:"product_id"`
	Product   *Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"product" validate:"-"`
	Quantity  int        `gorm:"not null;default:1" json:"quantity" validate:"min=1,max=10000"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Cart) BeforeSave(tx *gorm.DB) error {
	hasUser := c.UserID != nil
	hasSession := c.SessionKey != nil && *c.SessionKey != ""
	if hasUser == hasSession {
		return ErrCartOwner
	}
	return validateStruct(c)
}

// CartTotal sums price × quantity over the loaded items.
func (c Cart) CartTotal() decimal.Decimal {
	total, _ := SumLines(c.Items)
	return total
}

// CartItems sums the quantities of the loaded items.
func (c Cart) CartItems() int {
	_, count := SumLines(c.Items)
	return count
}

func (c Cart) String() string {
	if c.User != nil {
		return "Cart for " + c.User.Username
	}
	return "Cart for Guest"
}

func (c Cart) MarshalJSON() ([]byte, error) {
	type cart Cart
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	return json.Marshal(struct {
		cart
		CartTotal decimal.Decimal `json:"cart_total"`
		CartItems int             `json:"cart_items"`
	}{cart(c), c.CartTotal(), c.CartItems()})
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *CartItem) BeforeSave(tx *gorm.DB) error {
	if i.Quantity == 0 {
		i.Quantity = 1
	}
	return validateStruct(i)
}

func (i CartItem) LineTotal() decimal.Decimal {
	return lineTotal(i.Product, i.Quantity)
}

func (i CartItem) LineQuantity() int {
	return i.Quantity
}

// Available is false once the referenced product has been deleted.
func (i CartItem) Available() bool {
	return i.Product != nil
}

func (i CartItem) String() string {
	if i.Product == nil {
		return fmt.Sprintf("%d x unavailable product", i.Quantity)
	}
	return fmt.Sprintf("%d x %s", i.Quantity, i.Product.Name)
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	type cartItem CartItem
	return json.Marshal(struct {
		cartItem
		LineTotal decimal.Decimal `json:"line_total"`
		Available bool            `json:"available"`
	}{cartItem(i), i.LineTotal(), i.Available()})
}
