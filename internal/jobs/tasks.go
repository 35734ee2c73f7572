package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan rebuilds the restock radar after a checkout.
	TaskLowStockScan = "radar:low_stock"
	// TaskDailyPnlClose summarizes the day's sales at closing time.
	TaskDailyPnlClose = "pnl:daily_close"
)

// LowStockScanPayload names the products a checkout just drew down.
// An empty list scans the whole catalogue.
type LowStockScanPayload struct {
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// DailyPnlClosePayload selects the day to close; empty means today.
type DailyPnlClosePayload struct {
	Date string `json:"date,omitempty"`
}

func NewLowStockScanTask(ids []uuid.UUID) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{ProductIDs: ids})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3), asynq.Timeout(time.Minute)), nil
}

func NewDailyPnlCloseTask(date string) (*asynq.Task, error) {
	body, err := json.Marshal(DailyPnlClosePayload{Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailyPnlClose, body, asynq.Queue(QueueDefault)), nil
}
