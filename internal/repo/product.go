package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/pagination"
)

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, storeErr("list products", err)
	}
	return items, nil
}

func (r *GormRepo) ListProductsPage(ctx context.Context, p pagination.Page) ([]models.Product, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	items := make([]models.Product, 0, p.Limit)
	err := r.DB.WithContext(ctx).Order("id ASC").Offset(p.Offset).Limit(p.Limit).Find(&items).Error
	if err != nil {
		return nil, storeErr("list products page", err)
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeErr("get product", ErrNotFound)
		}
		return nil, storeErr("get product", err)
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		if isUniqueViolation(err) {
			return storeErr("create product", ErrDuplicateName)
		}
		return storeErr("create product", err)
	}
	return nil
}

// UpdateProduct replaces every mutable field of the product with id.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, in models.Product) (*models.Product, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&prod).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		prod.Name = in.Name
		prod.Description = in.Description
		prod.Cost = in.Cost
		prod.Icon = in.Icon

		return tx.Model(&prod).Select("name", "description", "cost", "icon").Updates(&prod).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storeErr("update product", ErrDuplicateName)
		}
		return nil, storeErr("update product", err)
	}
	return &prod, nil
}

// DeleteProduct removes the product and every cart line that references it.
// It reports whether a product row was removed.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) (bool, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	deleted := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, storeErr("delete product", err)
	}
	return deleted, nil
}
