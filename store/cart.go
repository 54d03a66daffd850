package store

import (
	"context"
	"errors"
	"fmt"

	"mall-backend/events"
	"mall-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type cartItemEvent struct {
	CartID    uuid.UUID  `json:"cart_id"`
	ProductID *uuid.UUID `json:"product_id"`
	Quantity  int        `json:"quantity"`
}

func ownerScope(identity Identity) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("complete = ?", false)
		if identity.UserID != nil {
			return db.Where("user_id = ?", *identity.UserID)
		}
		return db.Where("session_key = ? AND user_id IS NULL", identity.SessionKey)
	}
}

// findOpenCart returns the identity's open cart.
func findOpenCart(tx *gorm.DB, identity Identity, lock bool) (*models.Cart, error) {
	query := tx.Scopes(ownerScope(identity))
	if lock {
		query = forUpdate(query)
	}
	var cart models.Cart
	if err := query.Order("created_at ASC").First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func openCart(tx *gorm.DB, identity Identity, lock bool) (*models.Cart, error) {
	cart, err := findOpenCart(tx, identity, lock)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return createOpenCart(tx, identity, lock)
}

// createOpenCart inserts an open cart for the identity. The open cart indexes
// reject a second one, in which case the cart that won the insert is returned.
func createOpenCart(tx *gorm.DB, identity Identity, lock bool) (*models.Cart, error) {
	cart := &models.Cart{}
	if identity.UserID != nil {
		cart.UserID = identity.UserID
	} else {
		key := identity.SessionKey
		cart.SessionKey = &key
	}

	// The savepoint keeps an outer transaction usable after a rejected insert.
	err := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(cart).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, err := findOpenCart(tx, identity, lock)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

func loadCart(db *gorm.DB, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, lookupErr(err, "cart")
	}
	return &cart, nil
}

// GetOrCreateCart returns the identity's open cart with its lines and their
// current products, creating an empty cart when none exists.
func (s *Store) GetOrCreateCart(ctx context.Context, identity Identity) (*models.Cart, error) {
	if err := identity.validate(); err != nil {
		return nil, err
	}
	cart, err := openCart(s.db(ctx), identity, false)
	if err != nil {
		return nil, err
	}
	return loadCart(s.db(ctx), cart.ID)
}

// AddCartItem adds quantity units of a product, merging into the existing line
// for that product. A zero quantity means one.
func (s *Store) AddCartItem(ctx context.Context, identity Identity, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if err := identity.validate(); err != nil {
		return nil, err
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || quantity > models.MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	var cartID uuid.UUID
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id").First(&product, "id = ?", productID).Error; err != nil {
			return lookupErr(err, "product")
		}

		cart, err := openCart(tx, identity, true)
		if err != nil {
			return err
		}
		cartID = cart.ID

		var item models.CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
		switch {
		case err == nil:
			if item.Quantity+quantity > models.MaxLineQuantity {
				return ErrInvalidQuantity
			}
			return tx.Model(&item).UpdateColumn("quantity", item.Quantity+quantity).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			pid := productID
			return tx.Create(&models.CartItem{CartID: cart.ID, ProductID: &pid, Quantity: quantity}).Error
		default:
			return fmt.Errorf("failed to load cart item: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicCartItemAdded, cartID, cartItemEvent{CartID: cartID, ProductID: &productID, Quantity: quantity})
	return loadCart(s.db(ctx), cartID)
}

// UpdateCartItem sets the quantity of a line in the identity's open cart.
func (s *Store) UpdateCartItem(ctx context.Context, identity Identity, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	if err := identity.validate(); err != nil {
		return nil, err
	}
	if quantity < 1 || quantity > models.MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	var cartID uuid.UUID
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := cartLine(tx, identity, itemID)
		if err != nil {
			return err
		}
		cartID = item.CartID
		return tx.Model(item).UpdateColumn("quantity", quantity).Error
	})
	if err != nil {
		return nil, err
	}
	return loadCart(s.db(ctx), cartID)
}

func (s *Store) RemoveCartItem(ctx context.Context, identity Identity, itemID uuid.UUID) (*models.Cart, error) {
	if err := identity.validate(); err != nil {
		return nil, err
	}

	var removed models.CartItem
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := cartLine(tx, identity, itemID)
		if err != nil {
			return err
		}
		removed = *item
		return tx.Delete(item).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicCartItemRemoved, removed.CartID, cartItemEvent{
		CartID:    removed.CartID,
		ProductID: removed.ProductID,
		Quantity:  removed.Quantity,
	})
	return loadCart(s.db(ctx), removed.CartID)
}

// cartLine loads a line of the identity's open cart, locking the cart.
func cartLine(tx *gorm.DB, identity Identity, itemID uuid.UUID) (*models.CartItem, error) {
	cart, err := findOpenCart(tx, identity, true)
	if err != nil {
		return nil, lookupErr(err, "cart")
	}
	var item models.CartItem
	if err := tx.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
		return nil, lookupErr(err, "cart item")
	}
	return &item, nil
}

// ClearCart removes every line from the identity's open cart.
func (s *Store) ClearCart(ctx context.Context, identity Identity) error {
	if err := identity.validate(); err != nil {
		return err
	}
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := findOpenCart(tx, identity, true)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
}

// ClaimSessionCart moves the lines of an anonymous cart into the user's open
// cart and removes the anonymous cart. Lines for a product the user already
// has are merged.
func (s *Store) ClaimSessionCart(ctx context.Context, userID uuid.UUID, sessionKey string) (*models.Cart, error) {
	session := SessionIdentity(sessionKey)
	if err := session.validate(); err != nil {
		return nil, err
	}

	var cartID uuid.UUID
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := openCart(tx, UserIdentity(userID), true)
		if err != nil {
			return err
		}
		cartID = cart.ID

		anon, err := findOpenCart(tx, session, true)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load session cart: %w", err)
		}

		var lines []models.CartItem
		if err := tx.Where("cart_id = ?", anon.ID).Find(&lines).Error; err != nil {
			return fmt.Errorf("failed to load session cart items: %w", err)
		}
		for i := range lines {
			if err := mergeLine(tx, cart.ID, &lines[i]); err != nil {
				return err
			}
		}
		return tx.Delete(anon).Error
	})
	if err != nil {
		return nil, err
	}
	return loadCart(s.db(ctx), cartID)
}

// mergeLine moves line into the cart, folding it into an existing line for the
// same product. Merged quantities are capped at MaxLineQuantity.
func mergeLine(tx *gorm.DB, cartID uuid.UUID, line *models.CartItem) error {
	if line.ProductID != nil {
		var existing models.CartItem
		err := tx.Where("cart_id = ? AND product_id = ?", cartID, *line.ProductID).First(&existing).Error
		if err == nil {
			total := min(existing.Quantity+line.Quantity, models.MaxLineQuantity)
			if err := tx.Model(&existing).UpdateColumn("quantity", total).Error; err != nil {
				return fmt.Errorf("failed to merge cart item: %w", err)
			}
			return tx.Delete(line).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load cart item: %w", err)
		}
	}
	if err := tx.Model(line).UpdateColumn("cart_id", cartID).Error; err != nil {
		return fmt.Errorf("failed to move cart item: %w", err)
	}
	return nil
}
