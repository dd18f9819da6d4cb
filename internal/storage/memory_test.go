package storage

import (
	"context"
	"errors"
	"testing"

	"rentledger/internal/core"

	"github.com/google/uuid"
)

func newTestObligation(owner string, amountCents int64, due core.Date) *core.Obligation {
	return &core.Obligation{
		ID:          uuid.New().String(),
		OwnerID:     owner,
		Kind:        core.KindRent,
		Description: "monthly rent",
		Amount:      core.Money{Cents: amountCents},
		DueDate:     due,
		Status:      core.StatusPending,
	}
}

func TestMemoryStore_ApplyPayment_Increments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	asOf := core.NewDate(2024, 2, 1)

	o := newTestObligation("owner-1", 5000, core.NewDate(2024, 2, 10))
	if err := store.CreateObligation(ctx, o); err != nil {
		t.Fatalf("CreateObligation: %v", err)
	}

	got, err := store.ApplyPayment(ctx, "owner-1", o.ID, 2000, core.PaymentMeta{}, asOf)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if got.PaidAmount.Cents != 2000 {
		t.Errorf("paid amount = %d, want 2000", got.PaidAmount.Cents)
	}
	if got.Status != core.StatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if got.PaidDate.IsSet() {
		t.Errorf("paid date set on partial payment")
	}

	got, err = store.ApplyPayment(ctx, "owner-1", o.ID, 3000, core.PaymentMeta{PaidDate: core.NewDate(2024, 2, 5)}, asOf)
	if err != nil {
		t.Fatalf("ApplyPayment second: %v", err)
	}
	if got.PaidAmount.Cents != 5000 {
		t.Errorf("paid amount = %d, want 5000 (increments accumulate)", got.PaidAmount.Cents)
	}
	if got.Status != core.StatusPaid {
		t.Errorf("status = %q, want paid", got.Status)
	}
	if !got.PaidDate.Equal(core.NewDate(2024, 2, 5)) {
		t.Errorf("paid date = %s, want 2024-02-05", got.PaidDate)
	}
}

func TestMemoryStore_ApplyPayment_KeepsExistingPaidDate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	asOf := core.NewDate(2024, 3, 1)

	o := newTestObligation("owner-1", 1000, core.NewDate(2024, 2, 10))
	if err := store.CreateObligation(ctx, o); err != nil {
		t.Fatalf("CreateObligation: %v", err)
	}

	first, err := store.ApplyPayment(ctx, "owner-1", o.ID, 1000, core.PaymentMeta{PaidDate: core.NewDate(2024, 2, 8)}, asOf)
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	second, err := store.ApplyPayment(ctx, "owner-1", o.ID, 500, core.PaymentMeta{PaidDate: core.NewDate(2024, 3, 1)}, asOf)
	if err != nil {
		t.Fatalf("ApplyPayment overpay: %v", err)
	}
	if !second.PaidDate.Equal(first.PaidDate) {
		t.Errorf("paid date changed on later payment: %s -> %s", first.PaidDate, second.PaidDate)
	}
	if !second.Overpaid() {
		t.Errorf("expected overpayment to be observable")
	}
}

func TestMemoryStore_ApplyPayment_OwnerScoped(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	o := newTestObligation("owner-1", 1000, core.NewDate(2024, 2, 10))
	if err := store.CreateObligation(ctx, o); err != nil {
		t.Fatalf("CreateObligation: %v", err)
	}

	_, err := store.ApplyPayment(ctx, "owner-2", o.ID, 1000, core.PaymentMeta{}, core.NewDate(2024, 2, 1))
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound for foreign owner", err)
	}

	got, err := store.GetObligation(ctx, "owner-1", o.ID)
	if err != nil {
		t.Fatalf("GetObligation: %v", err)
	}
	if got.PaidAmount.Cents != 0 {
		t.Errorf("paid amount changed by rejected payment: %d", got.PaidAmount.Cents)
	}
}

func TestMemoryStore_MarkOverdue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	asOf := core.NewDate(2024, 3, 1)

	past := newTestObligation("owner-1", 1000, core.NewDate(2024, 2, 10))
	today := newTestObligation("owner-1", 1000, asOf)
	future := newTestObligation("owner-1", 1000, core.NewDate(2024, 3, 15))
	settled := newTestObligation("owner-1", 1000, core.NewDate(2024, 2, 1))
	settled.PaidAmount = core.Money{Cents: 1000}
	foreign := newTestObligation("owner-2", 1000, core.NewDate(2024, 1, 1))

	for _, o := range []*core.Obligation{past, today, future, settled, foreign} {
		if err := store.CreateObligation(ctx, o); err != nil {
			t.Fatalf("CreateObligation: %v", err)
		}
	}

	n, err := store.MarkOverdue(ctx, "owner-1", asOf)
	if err != nil {
		t.Fatalf("MarkOverdue: %v", err)
	}
	if n != 1 {
		t.Errorf("marked %d rows, want 1 (only past-due unpaid)", n)
	}

	got, _ := store.GetObligation(ctx, "owner-1", past.ID)
	if got.Status != core.StatusOverdue {
		t.Errorf("past-due status = %q, want overdue", got.Status)
	}
	got, _ = store.GetObligation(ctx, "owner-1", today.ID)
	if got.Status != core.StatusPending {
		t.Errorf("due-today status = %q, want pending", got.Status)
	}
	got, _ = store.GetObligation(ctx, "owner-2", foreign.ID)
	if got.Status != core.StatusPending {
		t.Errorf("foreign owner touched by sweep")
	}

	// Running the sweep again changes nothing.
	n, err = store.MarkOverdue(ctx, "owner-1", asOf)
	if err != nil {
		t.Fatalf("MarkOverdue repeat: %v", err)
	}
	if n != 0 {
		t.Errorf("second sweep marked %d rows, want 0", n)
	}
}

func TestMemoryStore_ListObligations_Filter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rent := newTestObligation("owner-1", 1000, core.NewDate(2024, 2, 1))
	expense := newTestObligation("owner-1", 500, core.NewDate(2024, 2, 15))
	expense.Kind = core.KindExpense
	late := newTestObligation("owner-1", 700, core.NewDate(2024, 3, 20))

	for _, o := range []*core.Obligation{rent, expense, late} {
		if err := store.CreateObligation(ctx, o); err != nil {
			t.Fatalf("CreateObligation: %v", err)
		}
	}

	byKind, err := store.ListObligations(ctx, "owner-1", ObligationFilter{Kind: core.KindExpense})
	if err != nil {
		t.Fatalf("ListObligations: %v", err)
	}
	if len(byKind) != 1 || byKind[0].ID != expense.ID {
		t.Errorf("kind filter returned %d records", len(byKind))
	}

	byRange, err := store.ListObligations(ctx, "owner-1", ObligationFilter{
		DueFrom: core.NewDate(2024, 2, 1),
		DueTo:   core.NewDate(2024, 2, 28),
	})
	if err != nil {
		t.Fatalf("ListObligations range: %v", err)
	}
	if len(byRange) != 2 {
		t.Errorf("range filter returned %d records, want 2", len(byRange))
	}
}

func TestMemoryStore_ExportQueue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	asOf := core.NewDate(2024, 2, 1)

	paid := newTestObligation("owner-1", 1000, core.NewDate(2024, 2, 10))
	open := newTestObligation("owner-1", 1000, core.NewDate(2024, 2, 10))
	for _, o := range []*core.Obligation{paid, open} {
		if err := store.CreateObligation(ctx, o); err != nil {
			t.Fatalf("CreateObligation: %v", err)
		}
	}
	if _, err := store.ApplyPayment(ctx, "owner-1", paid.ID, 1000, core.PaymentMeta{}, asOf); err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}

	pending, err := store.PendingExportObligations(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExportObligations: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != paid.ID {
		t.Fatalf("pending export = %d records, want just the settled one", len(pending))
	}

	if err := store.MarkExported(ctx, paid.ID); err != nil {
		t.Fatalf("MarkExported: %v", err)
	}
	pending, err = store.PendingExportObligations(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExportObligations after sync: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("synced obligation still pending export")
	}
}
