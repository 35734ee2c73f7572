package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"ali-plastic-pos/internal/service"
)

// LowStockJob logs every product that a scan finds at or below its minimum.
type LowStockJob struct {
	Reports service.ReportService
	Logger  *slog.Logger
}

func NewLowStockJob(reports service.ReportService, logger *slog.Logger) *LowStockJob {
	return &LowStockJob{Reports: reports, Logger: logger}
}

func (j *LowStockJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("low stock scan payload: %v: %w", err, asynq.SkipRetry)
	}

	logger := logOrDefault(j.Logger).With(slog.String("task", TaskLowStockScan))
	items, err := j.Reports.GetLowStock(ctx, payload.ProductIDs)
	if err != nil {
		logger.Error("low stock scan", slog.Any("error", err))
		return err
	}
	for _, it := range items {
		logger.Warn("product below minimum",
			slog.String("product_id", it.ID.String()),
			slog.String("name", it.DisplayName()),
			slog.String("stock", it.StockInMainFormat),
			slog.String("min_limit", it.MinLimit.String()),
		)
	}
	logger.Info("low stock scan done", slog.Int("checked", len(payload.ProductIDs)), slog.Int("low", len(items)))
	return nil
}

// DailyCloseJob records the day's totals in the log at closing time.
type DailyCloseJob struct {
	Reports service.ReportService
	Logger  *slog.Logger
	clock   func() time.Time
}

func NewDailyCloseJob(reports service.ReportService, logger *slog.Logger) *DailyCloseJob {
	return &DailyCloseJob{Reports: reports, Logger: logger, clock: time.Now}
}

func (j *DailyCloseJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("daily close: handler not configured")
	}
	var payload DailyPnlClosePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("daily close payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	day := j.now()
	if payload.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", payload.Date, time.Local)
		if err != nil {
			return fmt.Errorf("daily close date %q: %w", payload.Date, asynq.SkipRetry)
		}
		day = parsed
	}

	logger := logOrDefault(j.Logger).With(slog.String("task", TaskDailyPnlClose))
	pnl, err := j.Reports.GetDailyPnl(ctx, day)
	if err != nil {
		logger.Error("daily close", slog.Any("error", err))
		return err
	}
	logger.Info("daily close",
		slog.String("date", pnl.Date),
		slog.Int("sales", pnl.SaleCount),
		slog.String("total", pnl.DailyTotal.StringFixed(2)),
		slog.String("profit", pnl.DailyProfit.StringFixed(2)),
	)
	return nil
}

func (j *DailyCloseJob) now() time.Time {
	if j.clock == nil {
		return time.Now()
	}
	return j.clock()
}

func logOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
