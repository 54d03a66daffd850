package store

import (
	"context"
	"errors"
	"fmt"

	"mall-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddToWishlist saves a product for a user. Adding the same product twice
// returns the existing entry and created=false.
func (s *Store) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (*models.Wishlist, bool, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, false, err
	}

	if existing, err := s.findWishlist(ctx, userID, productID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to load wishlist: %w", err)
	}

	entry := models.Wishlist{UserID: userID, ProductID: productID}
	if err := s.db(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := s.findWishlist(ctx, userID, productID)
			if ferr != nil {
				return nil, false, fmt.Errorf("failed to load wishlist: %w", ferr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to add to wishlist: %w", err)
	}

	created, err := s.findWishlist(ctx, userID, productID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load wishlist: %w", err)
	}
	return created, true, nil
}

func (s *Store) findWishlist(ctx context.Context, userID, productID uuid.UUID) (*models.Wishlist, error) {
	var entry models.Wishlist
	err := s.db(ctx).Preload("Product").
		Where("user_id = ? AND product_id = ?", userID, productID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	res := s.db(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Wishlist{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("wishlist entry: %w", ErrNotFound)
	}
	return nil
}

func (s *Store) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	var entries []models.Wishlist
	if err := s.db(ctx).Preload("Product").Where("user_id = ?", userID).
		Order("date_added DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return entries, nil
}
