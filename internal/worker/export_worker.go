// Package worker runs the background processes: statement export and rent
// billing.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/export"
	"rentledger/internal/storage"
)

// ExportWorker moves settled obligations into the external statement. It
// reacts to ledger events and additionally scans the pending-export queue so
// lost messages are recovered.
type ExportWorker struct {
	store     storage.Store
	writer    export.StatementWriter
	batchSize int
}

func NewExportWorker(store storage.Store, writer export.StatementWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleLedgerEvent exports the obligation named by an event if it is
// settled. Events for unsettled obligations are acknowledged and ignored.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	o, err := w.store.GetObligation(ctx, msg.OwnerID, msg.ObligationID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before the event arrived; nothing to export.
		slog.WarnContext(ctx, "Obligation gone, skipping export",
			"obligation_id", msg.ObligationID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get obligation: %w", err)
	}

	if o.Status != core.StatusPaid {
		return nil
	}
	return w.exportObligation(ctx, *o)
}

// ProcessPending exports a batch of settled obligations the event path
// missed.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingExportObligations(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending statement exports", "count", len(pending))
	for _, o := range pending {
		if err := w.exportObligation(ctx, o); err != nil {
			slog.ErrorContext(ctx, "Failed to export obligation",
				"obligation_id", o.ID, "error", err)
		}
	}
	return nil
}

// Run consumes ledger events and periodically sweeps the pending queue until
// the context is cancelled. The AMQP client may be nil; then only the
// periodic sweep runs.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	if client != nil {
		g.Go(func() error {
			return client.ConsumeLedgerEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
				return w.HandleLedgerEvent(ctx, msg)
			})
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Pending export pass failed", "error", err)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *ExportWorker) exportObligation(ctx context.Context, o core.Obligation) error {
	ref, err := w.writer.Append(ctx, o)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, o.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"obligation_id", o.ID, "error", markErr)
		}
		return fmt.Errorf("append to statement: %w", err)
	}

	if err := w.store.MarkExported(ctx, o.ID); err != nil {
		// The row is written; failing here would re-export it later, which
		// is preferable to losing it.
		slog.ErrorContext(ctx, "Failed to mark as exported",
			"obligation_id", o.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported obligation to statement",
		"obligation_id", o.ID,
		"statement_ref", ref,
		"amount_cents", o.Amount.Cents)
	return nil
}
