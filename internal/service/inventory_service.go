package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ali-plastic-pos/internal/cache"
	"ali-plastic-pos/internal/model"
	"ali-plastic-pos/internal/repository"
	"ali-plastic-pos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventoryService interface {
	AddProduct(ctx context.Context, req *model.Product, actor Actor) error
	UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest, actor Actor) (*model.Product, error)
	Restock(ctx context.Context, id uuid.UUID, req *RestockRequest, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// UpdateProductRequest is a partial update; nil fields are left untouched.
type UpdateProductRequest struct {
	ProdName   *string          `json:"prod_name"`
	UnitVal    *decimal.Decimal `json:"unit_val"`
	UnitType   *string          `json:"unit_type"`
	BuyFormat  *string          `json:"buy_format"`
	SubQty1    *int             `json:"sub_qty1"`
	SubQty2    *int             `json:"sub_qty2"`
	TotalItems *decimal.Decimal `json:"total_items"`
	BuyPrice   *decimal.Decimal `json:"buy_price"`
	UnitCost   *decimal.Decimal `json:"unit_cost"`
	SellPrice  *decimal.Decimal `json:"sell_price"`
	Profit     *decimal.Decimal `json:"profit"`
	MinLimit   *decimal.Decimal `json:"min_limit"`
}

// RestockRequest adds base pieces and replaces the per-piece economics.
type RestockRequest struct {
	AddedItems decimal.Decimal `json:"added_items" validate:"gte=0"`
	UnitCost   decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	SellPrice  decimal.Decimal `json:"sell_price" validate:"gte=0"`
	Profit     decimal.Decimal `json:"profit"`
}

type inventoryService struct {
	productRepo repository.ProductRepository
	tx          repository.Transactor
	cache       *cache.Cache
	wsHub       EventPublisher
	logger      *slog.Logger
}

func NewInventoryService(pRepo repository.ProductRepository, tx repository.Transactor, c *cache.Cache, hub EventPublisher, logger *slog.Logger) InventoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &inventoryService{
		productRepo: pRepo,
		tx:          tx,
		cache:       c,
		wsHub:       publisherOrNoop(hub),
		logger:      logger,
	}
}

func normalizeProduct(p *model.Product) error {
	p.ProdName = strings.TrimSpace(p.ProdName)
	p.UnitType = strings.TrimSpace(p.UnitType)
	if p.BuyFormat == "" {
		p.BuyFormat = model.FormatPiece
	}
	f, err := model.ParseBuyFormat(string(p.BuyFormat))
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	p.BuyFormat = f
	return validate(p)
}

func (s *inventoryService) AddProduct(ctx context.Context, req *model.Product, actor Actor) error {
	if err := normalizeProduct(req); err != nil {
		return err
	}

	// Identity check first; the unique index catches the race between check and insert.
	existing, err := s.productRepo.FindByIdentity(ctx, req.ProdName, req.UnitVal, req.UnitType)
	if err == nil && existing != nil {
		return ErrProductExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	req.ID = uuid.Nil
	req.CreatedBy = actor.auditID()
	req.UpdatedBy = actor.auditID()

	err = s.tx.WithinTransaction(ctx, func(r repository.Repositories) error {
		if err := r.Products.Create(ctx, req); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrProductExists
			}
			return err
		}
		if req.TotalItems.IsZero() {
			return nil
		}
		return r.Movements.Create(ctx, &model.StockMovement{
			BaseModel: model.BaseModel{CreatedBy: actor.auditID(), UpdatedBy: actor.auditID()},
			ProductID: req.ID,
			Type:      model.MovementIn,
			Quantity:  req.TotalItems,
			Note:      "opening stock",
		})
	})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, "product_created", req, actor, fmt.Sprintf("%s added '%s'", actor.Username, req.DisplayName()))
	return nil
}

// apply copies the set fields onto p and returns the touched column names.
func (req *UpdateProductRequest) apply(p *model.Product) []string {
	var cols []string
	if req.ProdName != nil {
		p.ProdName = *req.ProdName
		cols = append(cols, "prod_name")
	}
	if req.UnitVal != nil {
		p.UnitVal = *req.UnitVal
		cols = append(cols, "unit_val")
	}
	if req.UnitType != nil {
		p.UnitType = *req.UnitType
		cols = append(cols, "unit_type")
	}
	if req.BuyFormat != nil {
		p.BuyFormat = model.BuyFormat(*req.BuyFormat)
		cols = append(cols, "buy_format")
	}
	if req.SubQty1 != nil {
		p.SubQty1 = *req.SubQty1
		cols = append(cols, "sub_qty1")
	}
	if req.SubQty2 != nil {
		p.SubQty2 = *req.SubQty2
		cols = append(cols, "sub_qty2")
	}
	if req.TotalItems != nil {
		p.TotalItems = *req.TotalItems
		cols = append(cols, "total_items")
	}
	if req.BuyPrice != nil {
		p.BuyPrice = *req.BuyPrice
		cols = append(cols, "buy_price")
	}
	if req.UnitCost != nil {
		p.UnitCost = *req.UnitCost
		cols = append(cols, "unit_cost")
	}
	if req.SellPrice != nil {
		p.SellPrice = *req.SellPrice
		cols = append(cols, "sell_price")
	}
	if req.Profit != nil {
		p.Profit = *req.Profit
		cols = append(cols, "profit")
	}
	if req.MinLimit != nil {
		p.MinLimit = *req.MinLimit
		cols = append(cols, "min_limit")
	}
	return cols
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest, actor Actor) (*model.Product, error) {
	var updated *model.Product

	err := s.tx.WithinTransaction(ctx, func(r repository.Repositories) error {
		existing, err := r.Products.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		oldStock := existing.TotalItems
		oldName, oldVal, oldType := existing.ProdName, existing.UnitVal, existing.UnitType

		cols := req.apply(existing)
		if err := normalizeProduct(existing); err != nil {
			return err
		}
		if len(cols) == 0 {
			updated = existing
			return nil
		}

		identityChanged := existing.ProdName != oldName || !existing.UnitVal.Equal(oldVal) || existing.UnitType != oldType
		if identityChanged {
			other, err := r.Products.FindByIdentity(ctx, existing.ProdName, existing.UnitVal, existing.UnitType)
			if err == nil && other != nil && other.ID != existing.ID {
				return ErrProductExists
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		existing.UpdatedBy = actor.auditID()
		cols = append(cols, "updated_by", "updated_at")
		if err := r.Products.Update(ctx, existing, cols...); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrProductExists
			}
			return err
		}

		if delta := existing.TotalItems.Sub(oldStock); !delta.IsZero() {
			if err := r.Movements.Create(ctx, &model.StockMovement{
				BaseModel: model.BaseModel{CreatedBy: actor.auditID(), UpdatedBy: actor.auditID()},
				ProductID: existing.ID,
				Type:      model.MovementAdjust,
				Quantity:  delta,
				Note:      "manual edit",
			}); err != nil {
				return err
			}
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "product_updated", updated, actor, fmt.Sprintf("%s updated '%s'", actor.Username, updated.DisplayName()))
	return updated, nil
}

func (s *inventoryService) Restock(ctx context.Context, id uuid.UUID, req *RestockRequest, actor Actor) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var restocked *model.Product
	err := s.tx.WithinTransaction(ctx, func(r repository.Repositories) error {
		err := r.Products.Restock(ctx, id, repository.RestockInput{
			AddedItems: req.AddedItems,
			UnitCost:   req.UnitCost,
			SellPrice:  req.SellPrice,
			Profit:     req.Profit,
			UpdatedBy:  actor.auditID(),
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		if !req.AddedItems.IsZero() {
			if err := r.Movements.Create(ctx, &model.StockMovement{
				BaseModel: model.BaseModel{CreatedBy: actor.auditID(), UpdatedBy: actor.auditID()},
				ProductID: id,
				Type:      model.MovementIn,
				Quantity:  req.AddedItems,
				Note:      "restock",
			}); err != nil {
				return err
			}
		}
		restocked, err = r.Products.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "product_restocked", restocked, actor,
		fmt.Sprintf("%s restocked %s pieces of '%s'", actor.Username, ws.FormatQty(req.AddedItems), restocked.DisplayName()))
	return restocked, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache bump", slog.Any("error", err))
	}
	s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "product_deleted",
		Data:    map[string]interface{}{"id": id},
		User:    actor.Username,
		Message: fmt.Sprintf("%s deleted a product", actor.Username),
	})
	return nil
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *inventoryService) afterWrite(ctx context.Context, action string, p *model.Product, actor Actor, msg string) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache bump", slog.String("action", action), slog.Any("error", err))
	}
	s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  action,
		Data:    p,
		User:    actor.Username,
		Message: msg,
	})
}
