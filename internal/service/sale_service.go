package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ali-plastic-pos/internal/cache"
	"ali-plastic-pos/internal/model"
	"ali-plastic-pos/internal/repository"
	"ali-plastic-pos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	Checkout(ctx context.Context, req *CheckoutRequest, actor Actor) (*CheckoutResult, error)
	GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListSales(ctx context.Context, limit int) ([]model.Sale, error)
}

// CheckoutItem is one cart line. Qty and Price accept JSON numbers or numeric strings.
type CheckoutItem struct {
	ProductID string          `json:"id"`
	Qty       decimal.Decimal `json:"qty"`
	Mode      string          `json:"mode"`
	Price     decimal.Decimal `json:"price"`
}

type CheckoutRequest struct {
	Items []CheckoutItem `json:"items"`
}

type LineStatus string

const (
	LineApplied LineStatus = "applied"
	LineSkipped LineStatus = "skipped"
)

// LineResult reports what happened to one cart line.
type LineResult struct {
	Index     int             `json:"index"`
	ProductID string          `json:"product_id"`
	Status    LineStatus      `json:"status"`
	Reason    string          `json:"reason,omitempty"`
	Deduction decimal.Decimal `json:"deduction"`
}

type CheckoutResult struct {
	SaleID      uuid.UUID       `json:"sale_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	Lines       []LineResult    `json:"lines"`
}

// Applied counts the lines that changed stock.
func (r *CheckoutResult) Applied() int {
	n := 0
	for _, l := range r.Lines {
		if l.Status == LineApplied {
			n++
		}
	}
	return n
}

type SaleOptions struct {
	AllowNegativeStock bool
	Clock              Clock
}

type saleService struct {
	saleRepo  repository.SaleRepository
	tx        repository.Transactor
	cache     *cache.Cache
	wsHub     EventPublisher
	scheduler LowStockScheduler
	logger    *slog.Logger
	opts      SaleOptions
}

func NewSaleService(saleRepo repository.SaleRepository, tx repository.Transactor, c *cache.Cache, hub EventPublisher, scheduler LowStockScheduler, logger *slog.Logger, opts SaleOptions) SaleService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &saleService{
		saleRepo:  saleRepo,
		tx:        tx,
		cache:     c,
		wsHub:     publisherOrNoop(hub),
		scheduler: scheduler,
		logger:    logger,
		opts:      opts,
	}
}

func (s *saleService) Checkout(ctx context.Context, req *CheckoutRequest, actor Actor) (*CheckoutResult, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, ErrEmptyCheckout
	}

	sale := &model.Sale{
		ID:        uuid.New(),
		CreatedAt: s.opts.Clock(),
		CreatedBy: actor.auditID(),
	}
	result := &CheckoutResult{SaleID: sale.ID, Lines: make([]LineResult, 0, len(req.Items))}
	// post-sale stock per product, for the low-stock check
	touched := map[uuid.UUID]*model.Product{}
	var order []uuid.UUID

	err := s.tx.WithinTransaction(ctx, func(r repository.Repositories) error {
		totalAmount, totalProfit := decimal.Zero, decimal.Zero
		items := make([]model.SaleItem, 0, len(req.Items))
		movements := make([]*model.StockMovement, 0, len(req.Items))
		lines := make([]LineResult, 0, len(req.Items))

		for i, item := range req.Items {
			line := LineResult{Index: i, ProductID: item.ProductID, Status: LineSkipped}

			id, err := uuid.Parse(strings.TrimSpace(item.ProductID))
			if err != nil {
				line.Reason = "invalid product id"
				lines = append(lines, line)
				continue
			}
			product, err := r.Products.FindByID(ctx, id)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				line.Reason = "product not found"
				lines = append(lines, line)
				continue
			}
			if err != nil {
				return fmt.Errorf("line %d: load product: %w", i, err)
			}

			mode := model.ParseSaleMode(item.Mode)
			deduction, err := product.Deduction(mode, item.Qty)
			if err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}

			lineRevenue := item.Price.Mul(item.Qty)
			actualCost := product.UnitCost.Mul(deduction)
			itemProfit := lineRevenue.Sub(actualCost)

			err = r.Products.DeductStock(ctx, id, deduction, s.opts.AllowNegativeStock, actor.auditID())
			if errors.Is(err, gorm.ErrRecordNotFound) {
				line.Reason = "product not found"
				lines = append(lines, line)
				continue
			}
			if errors.Is(err, repository.ErrInsufficientStock) {
				return fmt.Errorf("%s: %w", product.DisplayName(), ErrInsufficientStock)
			}
			if err != nil {
				return fmt.Errorf("line %d: deduct stock: %w", i, err)
			}

			totalAmount = totalAmount.Add(lineRevenue)
			totalProfit = totalProfit.Add(itemProfit)

			items = append(items, model.SaleItem{
				SaleID:    sale.ID,
				Position:  len(items),
				ProductID: product.ID,
				Name:      product.ProdName,
				Qty:       item.Qty,
				Mode:      mode,
				SoldPrice: item.Price,
				Profit:    itemProfit,
			})
			saleID := sale.ID
			movements = append(movements, &model.StockMovement{
				BaseModel: model.BaseModel{CreatedBy: actor.auditID(), UpdatedBy: actor.auditID()},
				ProductID: product.ID,
				Type:      model.MovementOut,
				Quantity:  deduction.Neg(),
				SaleID:    &saleID,
				Note:      fmt.Sprintf("%s x%s", mode, item.Qty.String()),
			})

			if _, ok := touched[id]; !ok {
				order = append(order, id)
			}
			after := *product
			after.TotalItems = after.TotalItems.Sub(deduction)
			touched[id] = &after

			line.Status = LineApplied
			line.Deduction = deduction
			lines = append(lines, line)
		}

		sale.Items = items
		sale.TotalAmount = totalAmount
		sale.TotalProfit = totalProfit
		if err := r.Sales.Create(ctx, sale); err != nil {
			return fmt.Errorf("save sale: %w", err)
		}
		if err := r.Movements.Create(ctx, movements...); err != nil {
			return fmt.Errorf("save stock movements: %w", err)
		}
		result.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.TotalAmount = sale.TotalAmount
	result.TotalProfit = sale.TotalProfit
	s.afterCheckout(ctx, sale, result, touched, order, actor)
	return result, nil
}

func (s *saleService) afterCheckout(ctx context.Context, sale *model.Sale, result *CheckoutResult, touched map[uuid.UUID]*model.Product, order []uuid.UUID, actor Actor) {
	logger := s.logger.With(slog.String("sale_id", sale.ID.String()))
	if err := s.cache.Bump(ctx); err != nil {
		logger.Warn("cache bump", slog.Any("error", err))
	}

	logger.Info("checkout completed",
		slog.Int("lines", len(result.Lines)),
		slog.Int("applied", result.Applied()),
		slog.String("total_amount", sale.TotalAmount.String()),
	)
	s.wsHub.Publish(ws.Event{
		Type:   ws.EventSaleCompleted,
		Action: "checkout",
		Data: map[string]interface{}{
			"sale_id":      sale.ID,
			"total_amount": sale.TotalAmount,
			"items":        len(sale.Items),
		},
		User:    actor.Username,
		Message: fmt.Sprintf("%s completed a sale of %s", actor.Username, ws.FormatAmount(sale.TotalAmount)),
	})

	var low []uuid.UUID
	for _, id := range order {
		p := *touched[id]
		item, err := radarItem(p)
		if err != nil {
			logger.Warn("low stock check", slog.String("product_id", id.String()), slog.Any("error", err))
			continue
		}
		s.wsHub.Publish(ws.Event{
			Type:   ws.EventStockUpdate,
			Action: "stock_deducted",
			Data:   map[string]interface{}{"id": p.ID, "total_items": p.TotalItems},
			User:   actor.Username,
		})
		if !item.IsLow {
			continue
		}
		low = append(low, id)
		s.wsHub.Publish(ws.Event{
			Type:    ws.EventLowStock,
			Data:    item,
			Message: fmt.Sprintf("'%s' is down to %s %s", p.DisplayName(), item.StockInMainFormat, p.BuyFormat),
		})
	}

	if len(low) > 0 && s.scheduler != nil {
		if err := s.scheduler.EnqueueLowStockScan(ctx, low); err != nil {
			logger.Warn("enqueue low stock scan", slog.Any("error", err))
		}
	}
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSaleNotFound
	}
	return sale, err
}

func (s *saleService) ListSales(ctx context.Context, limit int) ([]model.Sale, error) {
	return s.saleRepo.FindAll(ctx, limit)
}
