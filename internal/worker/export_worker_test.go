package worker

import (
	"context"
	"testing"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/export"
	"rentledger/internal/storage"

	"github.com/google/uuid"
)

func seedPaidObligation(t *testing.T, store storage.Store, owner string) *core.Obligation {
	t.Helper()
	ctx := context.Background()
	o := &core.Obligation{
		ID:          uuid.New().String(),
		OwnerID:     owner,
		Kind:        core.KindRent,
		Description: "rent",
		Amount:      core.Money{Cents: 1000},
		DueDate:     core.NewDate(2024, 2, 10),
		Status:      core.StatusPending,
	}
	if err := store.CreateObligation(ctx, o); err != nil {
		t.Fatalf("CreateObligation: %v", err)
	}
	paid, err := store.ApplyPayment(ctx, owner, o.ID, 1000, core.PaymentMeta{}, core.NewDate(2024, 2, 1))
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	return paid
}

func TestExportWorker_HandleLedgerEvent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	writer := export.NewMemoryWriter()
	w := NewExportWorker(store, writer, 10)

	paid := seedPaidObligation(t, store, "owner-1")

	msg := amqp.NewLedgerEventMessage(amqp.EventPaymentRecorded, paid.ID, "owner-1", "rent")
	if err := w.HandleLedgerEvent(ctx, msg); err != nil {
		t.Fatalf("HandleLedgerEvent: %v", err)
	}

	rows := writer.Rows()
	if len(rows) != 1 || rows[0].ID != paid.ID {
		t.Fatalf("exported rows = %d", len(rows))
	}

	pending, err := store.PendingExportObligations(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExportObligations: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("obligation still pending after export")
	}
}

func TestExportWorker_HandleLedgerEvent_SkipsUnsettled(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	writer := export.NewMemoryWriter()
	w := NewExportWorker(store, writer, 10)

	o := &core.Obligation{
		ID:          uuid.New().String(),
		OwnerID:     "owner-1",
		Kind:        core.KindRent,
		Description: "rent",
		Amount:      core.Money{Cents: 1000},
		DueDate:     core.NewDate(2024, 2, 10),
		Status:      core.StatusPending,
	}
	if err := store.CreateObligation(ctx, o); err != nil {
		t.Fatalf("CreateObligation: %v", err)
	}

	msg := amqp.NewLedgerEventMessage(amqp.EventObligationCreated, o.ID, "owner-1", "rent")
	if err := w.HandleLedgerEvent(ctx, msg); err != nil {
		t.Fatalf("HandleLedgerEvent: %v", err)
	}
	if len(writer.Rows()) != 0 {
		t.Error("unsettled obligation was exported")
	}

	// An event for a vanished obligation is dropped, not requeued.
	gone := amqp.NewLedgerEventMessage(amqp.EventPaymentRecorded, "no-such-id", "owner-1", "rent")
	if err := w.HandleLedgerEvent(ctx, gone); err != nil {
		t.Errorf("missing obligation should not error: %v", err)
	}
}

func TestExportWorker_ProcessPending(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	writer := export.NewMemoryWriter()
	w := NewExportWorker(store, writer, 10)

	seedPaidObligation(t, store, "owner-1")
	seedPaidObligation(t, store, "owner-2")

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if got := len(writer.Rows()); got != 2 {
		t.Fatalf("exported rows = %d, want 2", got)
	}

	// Nothing left on the second pass.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending repeat: %v", err)
	}
	if got := len(writer.Rows()); got != 2 {
		t.Errorf("repeat pass re-exported rows: %d", got)
	}
}

func TestExportWorker_AppendFailureMarksError(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	writer := export.NewMemoryWriter()
	w := NewExportWorker(store, writer, 10)

	paid := seedPaidObligation(t, store, "owner-1")

	writer.FailNext = true
	msg := amqp.NewLedgerEventMessage(amqp.EventPaymentRecorded, paid.ID, "owner-1", "rent")
	if err := w.HandleLedgerEvent(ctx, msg); err == nil {
		t.Fatal("HandleLedgerEvent should surface the append failure")
	}

	// The error state takes the record out of the pending queue.
	pending, err := store.PendingExportObligations(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExportObligations: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("failed obligation still pending, want export_state=error")
	}
}
