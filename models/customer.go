package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer holds the shipping profile of a User. A user has at most one.
type Customer struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty" validate:"-"`
	Address     string    `gorm:"size:255" json:"address" validate:"max=255"`
	PhoneNumber string    `gorm:"size:15" json:"phone_number" validate:"max=15"`
	City        string    `gorm:"size:50" json:"city" validate:"max=50"`
	Country     string    `gorm:"size:50" json:"country" validate:"max=50"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Customer) BeforeSave(tx *gorm.DB) error {
	return validateStruct(c)
}

// String is the owning user's username; User must be loaded.
func (c Customer) String() string {
	if c.User == nil {
		return ""
	}
	return c.User.Username
}
