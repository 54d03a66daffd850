package store

import (
	"context"
	"errors"
	"fmt"

	"mall-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerFields struct {
	Address     string
	PhoneNumber string
	City        string
	Country     string
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "user")
	}
	return &user, nil
}

func (s *Store) GetCustomerByUser(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db(ctx).Preload("User").Where("user_id = ?", userID).First(&customer).Error; err != nil {
		return nil, lookupErr(err, "customer")
	}
	return &customer, nil
}

// UpsertCustomer creates the user's customer profile or replaces its contact fields.
func (s *Store) UpsertCustomer(ctx context.Context, userID uuid.UUID, fields CustomerFields) (*models.Customer, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		err := forUpdate(tx).Where("user_id = ?", userID).First(&customer).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load customer: %w", err)
		}
		customer.UserID = userID
		customer.Address = fields.Address
		customer.PhoneNumber = fields.PhoneNumber
		customer.City = fields.City
		customer.Country = fields.Country
		if customer.ID == uuid.Nil {
			return tx.Omit(clause.Associations).Create(&customer).Error
		}
		return tx.Omit(clause.Associations).Save(&customer).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetCustomerByUser(ctx, userID)
}

// DeleteCustomer removes a customer profile. Their orders remain as guest orders.
func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := detachCustomerOrders(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&models.Customer{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete customer: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("customer: %w", ErrNotFound)
		}
		return nil
	})
}

func detachCustomerOrders(tx *gorm.DB, customerID uuid.UUID) error {
	if err := tx.Model(&models.Order{}).Where("customer_id = ?", customerID).
		UpdateColumn("customer_id", nil).Error; err != nil {
		return fmt.Errorf("failed to detach orders: %w", err)
	}
	return nil
}

// DeleteUser removes a user with their customer profile, carts and wishlist.
// Orders placed by the user's customer record become guest orders.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		err := tx.Where("user_id = ?", id).First(&customer).Error
		switch {
		case err == nil:
			if err := detachCustomerOrders(tx, customer.ID); err != nil {
				return err
			}
			if err := tx.Delete(&customer).Error; err != nil {
				return fmt.Errorf("failed to delete customer: %w", err)
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to load customer: %w", err)
		}

		carts := tx.Model(&models.Cart{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("cart_id IN (?)", carts).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Cart{}).Error; err != nil {
			return fmt.Errorf("failed to delete carts: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Wishlist{}).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist: %w", err)
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil
	})
}
