// Package store implements persistence operations for the storefront: catalog and
// customer CRUD, carts, checkout, payments and wishlists, including the
// referential delete rules the schema relies on.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"mall-backend/events"
	"mall-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrIdentityRequired     = errors.New("a user or session identity is required")
	ErrInvalidQuantity      = fmt.Errorf("quantity must be between 1 and %d", models.MaxLineQuantity)
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrDuplicateTransaction = errors.New("transaction id already recorded")
	ErrInvalidTransition    = errors.New("invalid payment status transition")
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
	ErrOrderAlreadyComplete = errors.New("order is already complete")
)

// maxSessionKeyLen matches the carts.session_key column.
const maxSessionKeyLen = 40

type Store struct {
	DB     *gorm.DB
	Events events.Publisher
}

func New(db *gorm.DB, publisher events.Publisher) *Store {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Store{DB: db, Events: publisher}
}

// Identity is who a cart or order operation acts for: an authenticated user,
// an anonymous session, or both. The user wins when both are set.
type Identity struct {
	UserID     *uuid.UUID
	SessionKey string
}

func UserIdentity(userID uuid.UUID) Identity {
	return Identity{UserID: &userID}
}

func SessionIdentity(key string) Identity {
	return Identity{SessionKey: key}
}

func (i Identity) validate() error {
	if i.UserID != nil {
		return nil
	}
	if i.SessionKey == "" {
		return ErrIdentityRequired
	}
	if len(i.SessionKey) > maxSessionKeyLen {
		return fmt.Errorf("%w: session key longer than %d characters", ErrIdentityRequired, maxSessionKeyLen)
	}
	return nil
}

func (s *Store) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// publish sends an event after the write has committed. Delivery failures are
// logged and never fail the operation.
func (s *Store) publish(ctx context.Context, topic string, key uuid.UUID, payload interface{}) {
	if err := s.Events.Publish(ctx, topic, key.String(), payload); err != nil {
		log.Printf("Warning: failed to publish %s for %s: %v", topic, key, err)
	}
}

func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
