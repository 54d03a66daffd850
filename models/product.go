package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name" validate:"required,max=255"`
	Description string          `gorm:"type:text;not null" json:"description" validate:"required"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price" validate:"money"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty" validate:"-"`
	Stock       int             `gorm:"not null;default:0" json:"stock" validate:"min=0"`
	Image       *string         `gorm:"size:255" json:"image" validate:"omitempty,max=255"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	return validateStruct(p)
}

// IsInStock reports whether at least one unit is available.
func (p Product) IsInStock() bool {
	return p.Stock > 0
}

func (p Product) String() string {
	return p.Name
}

func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		IsInStock bool `json:"is_in_stock"`
	}{product(p), p.IsInStock()})
}
