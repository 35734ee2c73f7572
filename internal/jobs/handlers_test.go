package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ali-plastic-pos/internal/model"
	"ali-plastic-pos/internal/service"
)

type fakeReports struct {
	lowIDs   []uuid.UUID
	low      []service.RadarItem
	pnlDay   time.Time
	pnl      *service.DailyPnl
	err      error
	lowCalls int
}

func (f *fakeReports) GetRestockRadar(ctx context.Context, onlyLow bool) ([]service.RadarItem, error) {
	return f.low, f.err
}

func (f *fakeReports) GetLowStock(ctx context.Context, ids []uuid.UUID) ([]service.RadarItem, error) {
	f.lowCalls++
	f.lowIDs = ids
	return f.low, f.err
}

func (f *fakeReports) GetDailyPnl(ctx context.Context, day time.Time) (*service.DailyPnl, error) {
	f.pnlDay = day
	return f.pnl, f.err
}

func TestLowStockJobScansRequestedProducts(t *testing.T) {
	id := uuid.New()
	reports := &fakeReports{low: []service.RadarItem{{
		Product:           model.Product{BaseModel: model.BaseModel{ID: id}, ProdName: "Sugar", MinLimit: decimal.NewFromInt(5)},
		StockInMainFormat: "2.0",
		IsLow:             true,
	}}}
	job := NewLowStockJob(reports, nil)

	task, err := NewLowStockScanTask([]uuid.UUID{id})
	require.NoError(t, err)
	require.Equal(t, TaskLowStockScan, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, reports.lowCalls)
	require.Equal(t, []uuid.UUID{id}, reports.lowIDs)
}

func TestLowStockJobRejectsBadPayload(t *testing.T) {
	job := NewLowStockJob(&fakeReports{}, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskLowStockScan, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestLowStockJobReturnsStoreError(t *testing.T) {
	boom := errors.New("db down")
	job := NewLowStockJob(&fakeReports{err: boom}, nil)
	task, err := NewLowStockScanTask(nil)
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(context.Background(), task), boom)
}

func TestDailyCloseJobUsesPayloadDate(t *testing.T) {
	reports := &fakeReports{pnl: &service.DailyPnl{Date: "2024-05-01", DailyTotal: decimal.NewFromInt(150), DailyProfit: decimal.NewFromInt(25), SaleCount: 2}}
	job := NewDailyCloseJob(reports, nil)

	task, err := NewDailyPnlCloseTask("2024-05-01")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, "2024-05-01", reports.pnlDay.Format("2006-01-02"))
}

func TestDailyCloseJobDefaultsToToday(t *testing.T) {
	now := time.Date(2024, 6, 2, 23, 59, 0, 0, time.Local)
	reports := &fakeReports{pnl: &service.DailyPnl{Date: "2024-06-02"}}
	job := NewDailyCloseJob(reports, nil)
	job.clock = func() time.Time { return now }

	task, err := NewDailyPnlCloseTask("")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.True(t, reports.pnlDay.Equal(now))
}

func TestDailyCloseJobRejectsBadDate(t *testing.T) {
	job := NewDailyCloseJob(&fakeReports{}, nil)
	task, err := NewDailyPnlCloseTask("yesterday")
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

func TestNilClientDropsJobs(t *testing.T) {
	var c *Client
	require.NoError(t, c.EnqueueLowStockScan(context.Background(), []uuid.UUID{uuid.New()}))
	require.NoError(t, c.Close())
}
