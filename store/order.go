package store

import (
	"context"
	"errors"
	"fmt"

	"mall-backend/events"
	"mall-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderEvent struct {
	OrderID       uuid.UUID       `json:"order_id"`
	CustomerID    *uuid.UUID      `json:"customer_id"`
	CartTotal     decimal.Decimal `json:"cart_total"`
	CartItems     int             `json:"cart_items"`
	Complete      bool            `json:"complete"`
	TransactionID *string         `json:"transaction_id,omitempty"`
}

func newOrderEvent(o *models.Order) orderEvent {
	return orderEvent{
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		CartTotal:     o.CartTotal(),
		CartItems:     o.CartItems(),
		Complete:      o.Complete,
		TransactionID: o.TransactionID,
	}
}

func orderPreloads(db *gorm.DB) *gorm.DB {
	return db.Preload("Items.Product").Preload("Customer.User").Preload("Payments")
}

// Checkout turns the identity's open cart into an order. Stock is reserved under
// a row lock on each product; lines whose product has been deleted are dropped.
func (s *Store) Checkout(ctx context.Context, identity Identity) (*models.Order, error) {
	if err := identity.validate(); err != nil {
		return nil, err
	}

	var orderID uuid.UUID
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := findOpenCart(tx, identity, true)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}

		var lines []models.CartItem
		if err := tx.Where("cart_id = ? AND product_id IS NOT NULL", cart.ID).
			Order("created_at ASC").Find(&lines).Error; err != nil {
			return fmt.Errorf("failed to load cart items: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		order := models.Order{}
		if identity.UserID != nil {
			customer, err := checkoutCustomer(tx, *identity.UserID)
			if err != nil {
				return err
			}
			order.CustomerID = &customer.ID
		}

		for _, line := range lines {
			var product models.Product
			if err := forUpdate(tx).First(&product, "id = ?", *line.ProductID).Error; err != nil {
				return lookupErr(err, "product")
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("%w for %s: %d available, %d requested",
					ErrInsufficientStock, product.Name, product.Stock, line.Quantity)
			}
			if err := tx.Model(&product).UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to reserve stock: %w", err)
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
			})
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := tx.Model(cart).UpdateColumn("complete", true).Error; err != nil {
			return fmt.Errorf("failed to close cart: %w", err)
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID, nil)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicOrderPlaced, order.ID, newOrderEvent(order))
	return order, nil
}

// checkoutCustomer returns the user's customer profile, creating an empty one
// when the user has never saved contact details.
func checkoutCustomer(tx *gorm.DB, userID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := tx.Where("user_id = ?", userID).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	var user models.User
	if err := tx.Select("id").First(&user, "id = ?", userID).Error; err != nil {
		return nil, lookupErr(err, "user")
	}
	customer = models.Customer{UserID: userID}
	err = tx.Transaction(func(sp *gorm.DB) error {
		return sp.Omit(clause.Associations).Create(&customer).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if err := tx.Where("user_id = ?", userID).First(&customer).Error; err != nil {
			return nil, fmt.Errorf("failed to load customer: %w", err)
		}
		return &customer, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &customer, nil
}

// GetOrder loads an order with its lines, customer and payments. When userID is
// set the order must belong to that user's customer record.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := orderPreloads(s.db(ctx)).First(&order, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "order")
	}
	if userID != nil && (order.Customer == nil || order.Customer.UserID != *userID) {
		return nil, fmt.Errorf("order: %w", ErrNotFound)
	}
	return &order, nil
}

// ListOrders returns the user's orders, newest first, or every order when userID is nil.
func (s *Store) ListOrders(ctx context.Context, userID *uuid.UUID) ([]models.Order, error) {
	query := orderPreloads(s.db(ctx))
	if userID != nil {
		query = query.Where("customer_id IN (?)",
			s.db(ctx).Model(&models.Customer{}).Select("id").Where("user_id = ?", *userID))
	}

	var orders []models.Order
	if err := query.Order("date_ordered DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// CompleteOrder marks an order paid and fulfilled.
func (s *Store) CompleteOrder(ctx context.Context, id uuid.UUID, transactionID string) (*models.Order, error) {
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := forUpdate(tx).First(&order, "id = ?", id).Error; err != nil {
			return lookupErr(err, "order")
		}
		if order.Complete {
			return ErrOrderAlreadyComplete
		}
		order.Complete = true
		if transactionID != "" {
			order.TransactionID = &transactionID
		}
		return tx.Omit(clause.Associations).Save(&order).Error
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicOrderCompleted, order.ID, newOrderEvent(order))
	return order, nil
}

// DeleteOrder removes an order and its lines. Payments stay on record without
// an order reference.
func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Payment{}).Where("order_id = ?", id).
			UpdateColumn("order_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach payments: %w", err)
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order: %w", ErrNotFound)
		}
		return nil
	})
}
