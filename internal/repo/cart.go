package repo

import (
	"context"
	"encoding/base64"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shop_api/internal/models"
)

type cartRow struct {
	ID        uint
	UserID    uint
	ProductID uint
	Amount    int
	Name      string
	Cost      int64
	Icon      []byte
}

func (r cartRow) view() models.CartLineView {
	v := models.CartLineView{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Amount:    r.Amount,
		Name:      r.Name,
		Cost:      r.Cost,
	}
	if r.Icon != nil {
		s := base64.StdEncoding.EncodeToString(r.Icon)
		v.Icon = &s
	}
	return v
}

func cartLineKey(tx *gorm.DB, userID, productID uint) *gorm.DB {
	return tx.Where("user_id = ? AND product_id = ?", userID, productID)
}

func upsertCartLine(tx *gorm.DB, line *models.CartLine) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(line).Error
	if err != nil {
		return err
	}
	return cartLineKey(tx, line.UserID, line.ProductID).First(line).Error
}

// lockProduct holds a share lock on the product row until the transaction
// ends, so the line cannot be written against a missing or vanishing product.
func lockProduct(tx *gorm.DB, productID uint) error {
	var p models.Product
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).Select("id").Where("id = ?", productID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	return err
}

// joinProduct attaches product data to line. A missing product is an error
// only when required is set.
func joinProduct(tx *gorm.DB, line models.CartLine, required bool) (models.CartLineView, error) {
	row := cartRow{ID: line.ID, UserID: line.UserID, ProductID: line.ProductID, Amount: line.Amount}

	var p models.Product
	err := tx.Select("id", "name", "cost", "icon").Where("id = ?", line.ProductID).Take(&p).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if required {
			return models.CartLineView{}, ErrProductNotFound
		}
	case err != nil:
		return models.CartLineView{}, err
	default:
		row.Name, row.Cost, row.Icon = p.Name, p.Cost, p.Icon
	}
	return row.view(), nil
}

// SetCartLine upserts the line when amount > 0 and deletes it otherwise.
// Deleting an absent line returns ErrNotFound.
func (r *GormRepo) SetCartLine(ctx context.Context, userID, productID uint, amount int) (*models.CartLineView, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	var out models.CartLineView
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if amount <= 0 {
			var line models.CartLine
			if err := cartLineKey(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID, productID).First(&line).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			view, err := joinProduct(tx, line, false)
			if err != nil {
				return err
			}
			if err := tx.Delete(&line).Error; err != nil {
				return err
			}
			out = view
			return nil
		}

		line := models.CartLine{UserID: userID, ProductID: productID, Amount: amount}
		if err := upsertCartLine(tx, &line); err != nil {
			return err
		}
		view, err := joinProduct(tx, line, true)
		if err != nil {
			return err
		}
		out = view
		return nil
	})
	if err != nil {
		return nil, storeErr("set cart line", err)
	}
	return &out, nil
}

// SetCartAmount applies the same transitions as SetCartLine and reports the
// resulting amount, or nil when no line remains.
func (r *GormRepo) SetCartAmount(ctx context.Context, userID, productID uint, amount int) (*int, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	var out *int
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if amount <= 0 {
			return cartLineKey(tx, userID, productID).Delete(&models.CartLine{}).Error
		}
		if err := lockProduct(tx, productID); err != nil {
			return err
		}
		line := models.CartLine{UserID: userID, ProductID: productID, Amount: amount}
		if err := upsertCartLine(tx, &line); err != nil {
			return err
		}
		out = &line.Amount
		return nil
	})
	if err != nil {
		return nil, storeErr("set cart amount", err)
	}
	return out, nil
}

func (r *GormRepo) ListCart(ctx context.Context, userID uint) ([]models.CartLineView, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	var rows []cartRow
	err := r.DB.WithContext(ctx).
		Table("cart AS c").
		Select("c.id, c.user_id, c.product_id, c.amount, p.name, p.cost, p.icon").
		Joins("JOIN products AS p ON p.id = c.product_id").
		Where("c.user_id = ? AND c.amount > 0", userID).
		Order("p.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr("list cart", err)
	}

	out := make([]models.CartLineView, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.view())
	}
	return out, nil
}

// ClearCart removes every line of the user and reports how many were removed.
func (r *GormRepo) ClearCart(ctx context.Context, userID uint) (int64, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	var removed int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ?", userID).Delete(&models.CartLine{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, storeErr("clear cart", err)
	}
	return removed, nil
}
