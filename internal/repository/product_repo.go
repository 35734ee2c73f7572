package repository

import (
	"context"
	"errors"

	"ali-plastic-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock is returned by DeductStock when negative stock is not allowed.
var ErrInsufficientStock = errors.New("insufficient stock remaining")

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	FindByIdentity(ctx context.Context, name string, unitVal decimal.Decimal, unitType string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product, columns ...string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Restock(ctx context.Context, id uuid.UUID, in RestockInput) error
	DeductStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal, allowNegative bool, updatedBy string) error
}

// RestockInput adds to stock and replaces the per-piece economics.
type RestockInput struct {
	AddedItems decimal.Decimal
	UnitCost   decimal.Decimal
	SellPrice  decimal.Decimal
	Profit     decimal.Decimal
	UpdatedBy  string
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate row-locks the product until the surrounding transaction ends.
func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIdentity(ctx context.Context, name string, unitVal decimal.Decimal, unitType string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("prod_name = ? AND unit_val = ? AND unit_type = ?", name, unitVal, unitType).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update writes only the named columns, or the whole row when none are given.
func (r *productRepo) Update(ctx context.Context, product *model.Product, columns ...string) error {
	if len(columns) == 0 {
		return r.db.WithContext(ctx).Save(product).Error
	}
	return r.db.WithContext(ctx).Model(product).Select(columns).Updates(product).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id).Error
}

// Restock increments total_items in SQL so concurrent sales are never lost.
func (r *productRepo) Restock(ctx context.Context, id uuid.UUID, in RestockInput) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_items": gorm.Expr("total_items + ?", in.AddedItems),
			"unit_cost":   in.UnitCost,
			"sell_price":  in.SellPrice,
			"profit":      in.Profit,
			"updated_by":  in.UpdatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeductStock is a single "add -qty" statement; total_items is never read first.
// With allowNegative=false the row only matches while enough stock remains.
// A row that no longer exists is gorm.ErrRecordNotFound in either mode.
func (r *productRepo) DeductStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal, allowNegative bool, updatedBy string) error {
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id)
	if !allowNegative {
		q = q.Where("total_items >= ?", qty)
	}
	res := q.Updates(map[string]interface{}{
		"total_items": gorm.Expr("total_items - ?", qty),
		"updated_by":  updatedBy,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if allowNegative {
			return gorm.ErrRecordNotFound
		}
		// the stock guard and a concurrent delete both leave zero rows
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}
