package service

import (
	"context"
	"log/slog"
	"time"

	"ali-plastic-pos/internal/cache"
	"ali-plastic-pos/internal/model"
	"ali-plastic-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// RadarItem is a product with its stock expressed in main-format units.
type RadarItem struct {
	model.Product
	StockInMainFormat string `json:"stock_in_main_format"`
	IsLow             bool   `json:"is_low"`
}

// DailyPnl is the profit-and-loss view of one calendar day.
type DailyPnl struct {
	Date        string          `json:"date"`
	Sales       []model.Sale    `json:"sales"`
	DailyTotal  decimal.Decimal `json:"daily_total"`
	DailyProfit decimal.Decimal `json:"daily_profit"`
	SaleCount   int             `json:"sale_count"`
}

const dateLayout = "2006-01-02"

func radarItem(p model.Product) (RadarItem, error) {
	multiplier, err := p.MainFormatMultiplier()
	if err != nil {
		return RadarItem{}, err
	}
	stock := p.TotalItems.Div(multiplier)
	return RadarItem{
		Product:           p,
		StockInMainFormat: stock.StringFixed(1),
		IsLow:             stock.LessThanOrEqual(p.MinLimit),
	}, nil
}

// BuildRadar normalizes every product's stock to main-format units and flags
// the ones at or below their minimum. The flag uses the unrounded figure.
func BuildRadar(products []model.Product) ([]RadarItem, error) {
	items := make([]RadarItem, 0, len(products))
	for _, p := range products {
		item, err := radarItem(p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// FilterLow keeps only low items.
func FilterLow(items []RadarItem) []RadarItem {
	low := make([]RadarItem, 0, len(items))
	for _, it := range items {
		if it.IsLow {
			low = append(low, it)
		}
	}
	return low
}

// SummarizePnl sums the stored totals of each sale.
func SummarizePnl(sales []model.Sale) (total, profit decimal.Decimal) {
	total, profit = decimal.Zero, decimal.Zero
	for _, s := range sales {
		total = total.Add(s.TotalAmount)
		profit = profit.Add(s.TotalProfit)
	}
	return total, profit
}

// DayBounds returns [00:00:00.000, 23:59:59.999] of t's day in t's own location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	loc := t.Location()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

type ReportService interface {
	GetRestockRadar(ctx context.Context, onlyLow bool) ([]RadarItem, error)
	GetLowStock(ctx context.Context, ids []uuid.UUID) ([]RadarItem, error)
	GetDailyPnl(ctx context.Context, day time.Time) (*DailyPnl, error)
}

type reportService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	cache       *cache.Cache
	group       singleflight.Group
	clock       Clock
	logger      *slog.Logger
}

func NewReportService(pRepo repository.ProductRepository, sRepo repository.SaleRepository, c *cache.Cache, clock Clock, logger *slog.Logger) ReportService {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &reportService{productRepo: pRepo, saleRepo: sRepo, cache: c, clock: clock, logger: logger}
}

func (s *reportService) GetRestockRadar(ctx context.Context, onlyLow bool) ([]RadarItem, error) {
	scope := "all"
	if onlyLow {
		scope = "low"
	}
	key, err := s.cache.BuildKey(ctx, "report", "radar", scope)
	if err != nil {
		s.logger.Warn("radar cache key", slog.Any("error", err))
		return s.buildRadar(ctx, onlyLow)
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		var items []RadarItem
		err := s.cache.FetchJSON(ctx, key, &items, func(ctx context.Context) (interface{}, error) {
			return s.buildRadar(ctx, onlyLow)
		})
		return items, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]RadarItem), nil
	}
}

func (s *reportService) buildRadar(ctx context.Context, onlyLow bool) ([]RadarItem, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	items, err := BuildRadar(products)
	if err != nil {
		return nil, err
	}
	if onlyLow {
		return FilterLow(items), nil
	}
	return items, nil
}

// GetLowStock reads the given products straight from the store, skipping the cache.
func (s *reportService) GetLowStock(ctx context.Context, ids []uuid.UUID) ([]RadarItem, error) {
	var (
		products []model.Product
		err      error
	)
	if len(ids) == 0 {
		products, err = s.productRepo.FindAll(ctx)
	} else {
		products, err = s.productRepo.FindByIDs(ctx, ids)
	}
	if err != nil {
		return nil, err
	}
	items, err := BuildRadar(products)
	if err != nil {
		return nil, err
	}
	return FilterLow(items), nil
}

func (s *reportService) GetDailyPnl(ctx context.Context, day time.Time) (*DailyPnl, error) {
	if day.IsZero() {
		day = s.clock()
	}
	start, end := DayBounds(day)
	date := start.Format(dateLayout)

	load := func(ctx context.Context) (interface{}, error) {
		sales, err := s.saleRepo.FindBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		if sales == nil {
			sales = []model.Sale{}
		}
		total, profit := SummarizePnl(sales)
		return &DailyPnl{Date: date, Sales: sales, DailyTotal: total, DailyProfit: profit, SaleCount: len(sales)}, nil
	}

	key, err := s.cache.BuildKey(ctx, "report", "pnl", date)
	if err != nil {
		s.logger.Warn("pnl cache key", slog.Any("error", err))
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return v.(*DailyPnl), nil
	}

	var pnl DailyPnl
	if err := s.cache.FetchJSON(ctx, key, &pnl, load); err != nil {
		return nil, err
	}
	return &pnl, nil
}
