package store

import (
	"context"
	"fmt"

	"mall-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "category")
	}
	return &category, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := s.db(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, category *models.Category) error {
	if err := s.db(ctx).Omit(clause.Associations).Save(category).Error; err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category and detaches its products.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
			UpdateColumn("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}
		res := tx.Delete(&models.Category{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("category: %w", ErrNotFound)
		}
		return nil
	})
}

type ProductFilter struct {
	CategoryID  *uuid.UUID
	InStockOnly bool
}

func (s *Store) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := s.db(ctx).Preload("Category")
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.InStockOnly {
		query = query.Where("stock > ?", 0)
	}

	var products []models.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "product")
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	if err := s.db(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	if err := s.db(ctx).Omit(clause.Associations).Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (s *Store) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.GetCategory(ctx, *id)
	return err
}

// DeleteProduct removes a product. Cart and order lines keep their quantity but lose the
// product reference so past orders survive catalog changes; wishlist entries go with it.
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CartItem{}).Where("product_id = ?", id).
			UpdateColumn("product_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach cart items: %w", err)
		}
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).
			UpdateColumn("product_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach order items: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Wishlist{}).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist entries: %w", err)
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product: %w", ErrNotFound)
		}
		return nil
	})
}
