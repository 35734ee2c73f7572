package service

import (
	"context"
	"time"

	"ali-plastic-pos/internal/repository"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalProducts  int             `json:"total_products"`
	LowStockCount  int             `json:"low_stock_count"`
	StockValue     decimal.Decimal `json:"stock_value"`
	TodaySales     decimal.Decimal `json:"today_sales"`
	TodaySaleCount int             `json:"today_sale_count"`
}

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type dashboardService struct {
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
	movementRepo repository.MovementRepository
	clock        Clock
}

func NewDashboardService(pRepo repository.ProductRepository, sRepo repository.SaleRepository, mRepo repository.MovementRepository, clock Clock) DashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &dashboardService{productRepo: pRepo, saleRepo: sRepo, movementRepo: mRepo, clock: clock}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	endDate := s.clock()
	startDate, _ := DayBounds(endDate.AddDate(0, 0, -(days - 1)))

	data, err := s.movementRepo.GetStockMovement(ctx, startDate, endDate)
	if data == nil && err == nil {
		data = []repository.StockMovementData{}
	}
	return data, err
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	items, err := BuildRadar(products)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TotalProducts: len(products), StockValue: decimal.Zero}
	stats.LowStockCount = len(FilterLow(items))
	for _, p := range products {
		stats.StockValue = stats.StockValue.Add(p.TotalItems.Mul(p.UnitCost))
	}

	start, end := DayBounds(s.clock())
	sales, err := s.saleRepo.FindBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	stats.TodaySales, _ = SummarizePnl(sales)
	stats.TodaySaleCount = len(sales)
	return stats, nil
}
