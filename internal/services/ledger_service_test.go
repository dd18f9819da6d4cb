package services

import (
	"context"
	"errors"
	"testing"

	"rentledger/internal/core"
	"rentledger/internal/storage"
)

func newLedger(t *testing.T) (*LedgerService, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewLedgerService(store, nil), store
}

func TestLedgerService_CreateObligation(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t)

	created, err := ledger.CreateObligation(ctx, core.Obligation{
		OwnerID:     "owner-1",
		Kind:        core.KindExpense,
		Description: "boiler repair",
		Amount:      core.Money{Cents: 25000},
		DueDate:     core.NewDate(2030, 1, 15),
	})
	if err != nil {
		t.Fatalf("CreateObligation: %v", err)
	}
	if created.ID == "" {
		t.Error("obligation created without id")
	}
	if created.Status != core.StatusPending {
		t.Errorf("status = %q, want pending for a future due date", created.Status)
	}

	// A past due date is born overdue.
	overdue, err := ledger.CreateObligation(ctx, core.Obligation{
		OwnerID:     "owner-1",
		Kind:        core.KindExpense,
		Description: "old invoice",
		Amount:      core.Money{Cents: 1000},
		DueDate:     core.NewDate(2020, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateObligation past due: %v", err)
	}
	if overdue.Status != core.StatusOverdue {
		t.Errorf("status = %q, want overdue for a past due date", overdue.Status)
	}
}

func TestLedgerService_CreateObligation_Invalid(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t)

	tests := []struct {
		name string
		o    core.Obligation
	}{
		{"missing owner", core.Obligation{Kind: core.KindRent, Description: "x", Amount: core.Money{Cents: 100}, DueDate: core.NewDate(2030, 1, 1)}},
		{"zero amount", core.Obligation{OwnerID: "o", Kind: core.KindRent, Description: "x", DueDate: core.NewDate(2030, 1, 1)}},
		{"bad kind", core.Obligation{OwnerID: "o", Kind: "loan", Description: "x", Amount: core.Money{Cents: 100}, DueDate: core.NewDate(2030, 1, 1)}},
		{"no due date", core.Obligation{OwnerID: "o", Kind: core.KindRent, Description: "x", Amount: core.Money{Cents: 100}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ledger.CreateObligation(ctx, tt.o); err == nil {
				t.Error("CreateObligation accepted invalid input")
			}
		})
	}
}

func TestLedgerService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t)

	o, err := ledger.CreateObligation(ctx, core.Obligation{
		OwnerID:     "owner-1",
		Kind:        core.KindRent,
		Description: "march rent",
		Amount:      core.Money{Cents: 85000},
		DueDate:     core.NewDate(2030, 3, 1),
	})
	if err != nil {
		t.Fatalf("CreateObligation: %v", err)
	}

	if _, err := ledger.RecordPayment(ctx, "owner-1", o.ID, core.Money{Cents: 0}, core.PaymentMeta{}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero payment error = %v, want ErrInvalidAmount", err)
	}
	if _, err := ledger.RecordPayment(ctx, "owner-1", o.ID, core.Money{Cents: -500}, core.PaymentMeta{}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative payment error = %v, want ErrInvalidAmount", err)
	}

	got, err := ledger.RecordPayment(ctx, "owner-1", o.ID, core.Money{Cents: 40000}, core.PaymentMeta{Method: "transfer"})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if got.PaidAmount.Cents != 40000 || got.Status != core.StatusPending {
		t.Errorf("after partial: paid=%d status=%q", got.PaidAmount.Cents, got.Status)
	}

	got, err = ledger.RecordPayment(ctx, "owner-1", o.ID, core.Money{Cents: 45000}, core.PaymentMeta{})
	if err != nil {
		t.Fatalf("RecordPayment settle: %v", err)
	}
	if got.Status != core.StatusPaid {
		t.Errorf("status = %q, want paid", got.Status)
	}
	if !got.PaidDate.IsSet() {
		t.Error("paid date not stamped on settlement")
	}
	if got.Method != "transfer" {
		t.Errorf("method = %q, want transfer preserved", got.Method)
	}
}

func TestLedgerService_MetricsSweepsFirst(t *testing.T) {
	ctx := context.Background()
	ledger, store := newLedger(t)

	// Insert a stale pending record directly, bypassing status derivation.
	stale := &core.Obligation{
		ID:          "stale-1",
		OwnerID:     "owner-1",
		Kind:        core.KindRent,
		Description: "old rent",
		Amount:      core.Money{Cents: 1000},
		DueDate:     core.NewDate(2020, 1, 1),
		Status:      core.StatusPending,
	}
	if err := store.CreateObligation(ctx, stale); err != nil {
		t.Fatalf("CreateObligation: %v", err)
	}

	m, err := ledger.Metrics(ctx, "owner-1", storage.ObligationFilter{})
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.OverdueCount != 1 || m.PendingCount != 0 {
		t.Errorf("metrics = %+v, want the stale record counted overdue", m)
	}

	got, err := store.GetObligation(ctx, "owner-1", "stale-1")
	if err != nil {
		t.Fatalf("GetObligation: %v", err)
	}
	if got.Status != core.StatusOverdue {
		t.Errorf("stored status = %q, want overdue after sweep", got.Status)
	}
}

func TestLedgerService_GetObligationSweepsFirst(t *testing.T) {
	ctx := context.Background()
	ledger, store := newLedger(t)

	// A record left pending after its due date passed, as when no read has
	// happened since the boundary.
	stale := &core.Obligation{
		ID:          "stale-get",
		OwnerID:     "owner-1",
		Kind:        core.KindRent,
		Description: "old rent",
		Amount:      core.Money{Cents: 1000},
		DueDate:     core.NewDate(2020, 1, 1),
		Status:      core.StatusPending,
	}
	if err := store.CreateObligation(ctx, stale); err != nil {
		t.Fatalf("CreateObligation: %v", err)
	}

	got, err := ledger.GetObligation(ctx, "owner-1", "stale-get")
	if err != nil {
		t.Fatalf("GetObligation: %v", err)
	}
	if got.Status != core.StatusOverdue {
		t.Errorf("status = %q, want overdue on a single-record read", got.Status)
	}

	if _, err := ledger.GetObligation(ctx, "owner-2", "stale-get"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner get error = %v, want ErrNotFound", err)
	}
}

func TestLedgerService_CreateTenancy_BillsFirstRent(t *testing.T) {
	ctx := context.Background()
	ledger, store := newLedger(t)

	start := core.NewDate(2024, 1, 15)
	tn, err := ledger.CreateTenancy(ctx, core.Tenancy{
		OwnerID:    "owner-1",
		PropertyID: "prop-1",
		TenantID:   "tenant-1",
		RentAmount: core.Money{Cents: 85000},
		Frequency:  core.Monthly,
		StartDate:  start,
	})
	if err != nil {
		t.Fatalf("CreateTenancy: %v", err)
	}
	if !tn.LastBilled.Equal(start) {
		t.Errorf("last billed = %s, want start date", tn.LastBilled)
	}

	obs, err := store.ListObligations(ctx, "owner-1", storage.ObligationFilter{TenancyID: tn.ID})
	if err != nil {
		t.Fatalf("ListObligations: %v", err)
	}
	if len(obs) != 1 {
		t.Fatalf("obligations = %d, want the first rent record", len(obs))
	}
	first := obs[0]
	if first.Kind != core.KindRent || first.Amount.Cents != 85000 || !first.DueDate.Equal(start) {
		t.Errorf("first rent = %+v", first)
	}
	if !first.Recurrence.IsRecurring || first.Recurrence.Frequency != core.Monthly {
		t.Errorf("first rent recurrence = %+v", first.Recurrence)
	}
}
