package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentledger/internal/services"
)

// BillingWorker runs the rent billing pass on a fixed interval, with one
// pass at startup so a restart never delays billing a full interval.
type BillingWorker struct {
	processor *services.BillingProcessor
	interval  time.Duration
}

func NewBillingWorker(processor *services.BillingProcessor, interval time.Duration) *BillingWorker {
	return &BillingWorker{
		processor: processor,
		interval:  interval,
	}
}

func (w *BillingWorker) Run(ctx context.Context) error {
	w.pass(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

func (w *BillingWorker) pass(ctx context.Context) {
	now := time.Now()

	billed, err := w.processor.ProcessDueRent(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "Billing pass failed", "error", err)
		return
	}

	swept, err := w.processor.SweepAllOverdue(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "Overdue sweep failed", "error", err)
	}

	if billed > 0 || swept > 0 {
		slog.InfoContext(ctx, "Billing pass complete", "billed", billed, "swept", swept)
	}
}
