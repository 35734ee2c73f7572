package service

import (
	"context"
	"time"

	"ali-plastic-pos/internal/ws"

	"github.com/google/uuid"
)

// EventPublisher pushes live updates to connected clients. *ws.Hub satisfies it.
type EventPublisher interface {
	Publish(ev ws.Event)
}

// LowStockScheduler queues a background low-stock scan. *jobs.Client satisfies it.
type LowStockScheduler interface {
	EnqueueLowStockScan(ctx context.Context, productIDs []uuid.UUID) error
}

// Clock returns the current time; tests pin it.
type Clock func() time.Time

type noopPublisher struct{}

func (noopPublisher) Publish(ws.Event) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
