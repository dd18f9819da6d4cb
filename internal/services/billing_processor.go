package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rentledger/internal/core"
	"rentledger/internal/storage"
)

// BillingProcessor generates rent obligations for active tenancies whose
// billing period has rolled over.
type BillingProcessor struct {
	store  storage.Store
	ledger *LedgerService
}

func NewBillingProcessor(store storage.Store, ledger *LedgerService) *BillingProcessor {
	return &BillingProcessor{
		store:  store,
		ledger: ledger,
	}
}

// ProcessDueRent walks all active tenancies and bills the ones that are due.
// One tenancy failing never blocks the rest.
func (p *BillingProcessor) ProcessDueRent(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.ledger == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	tenancies, err := p.store.ListActiveTenancies(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active tenancies: %w", err)
	}

	slog.InfoContext(ctx, "Processing rent billing",
		"total_active", len(tenancies),
		"processing_date", now.Format("2006-01-02"))

	today := core.DateOf(now)
	billed := 0

	for _, t := range tenancies {
		if t.EndDate.IsSet() && t.EndDate.Before(today) {
			continue
		}
		if today.Before(t.StartDate) {
			continue
		}

		checker, err := GetDuenessChecker(t.Frequency)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping tenancy with unknown frequency",
				"tenancy_id", t.ID,
				"frequency", t.Frequency)
			continue
		}
		if !checker.IsDue(t.LastBilled, now, t.StartDate) {
			continue
		}

		dueDate := billingDate(t, now)
		obligation := core.Obligation{
			OwnerID:     t.OwnerID,
			TenancyID:   t.ID,
			Kind:        core.KindRent,
			Description: "Rent due " + dueDate.String(),
			Amount:      t.RentAmount,
			DueDate:     dueDate,
			Recurrence:  core.Recurrence{IsRecurring: true, Frequency: t.Frequency},
		}
		if _, err := p.ledger.CreateObligation(ctx, obligation); err != nil {
			slog.ErrorContext(ctx, "Failed to create rent obligation",
				"tenancy_id", t.ID,
				"error", err)
			continue
		}

		if err := p.store.SetTenancyLastBilled(ctx, t.ID, today); err != nil {
			slog.ErrorContext(ctx, "Failed to update last billed date",
				"tenancy_id", t.ID,
				"error", err)
			// Obligation exists; the next run will see the stale stamp and
			// the dueness check keeps it from double billing within a period.
		}

		billed++
		slog.InfoContext(ctx, "Billed rent obligation",
			"tenancy_id", t.ID,
			"amount_cents", t.RentAmount.Cents,
			"due_date", dueDate.String(),
			"frequency", t.Frequency)
	}

	slog.InfoContext(ctx, "Rent billing complete",
		"billed", billed,
		"total_checked", len(tenancies))
	return billed, nil
}

// SweepAllOverdue runs the overdue sweep for every owner with an active
// tenancy. Reads already sweep on demand; this pass keeps owners who have
// not logged in recently from accumulating stale pending statuses.
func (p *BillingProcessor) SweepAllOverdue(ctx context.Context, now time.Time) (int64, error) {
	tenancies, err := p.store.ListActiveTenancies(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active tenancies: %w", err)
	}

	asOf := core.DateOf(now)
	seen := make(map[string]bool, len(tenancies))
	var total int64
	for _, t := range tenancies {
		if seen[t.OwnerID] {
			continue
		}
		seen[t.OwnerID] = true

		n, err := p.store.MarkOverdue(ctx, t.OwnerID, asOf)
		if err != nil {
			slog.ErrorContext(ctx, "Overdue sweep failed for owner",
				"owner_id", t.OwnerID,
				"error", err)
			continue
		}
		total += n
	}
	return total, nil
}

// billingDate is the due date for the current period: the start date's day
// clamped into the current month for monthly tenancies, today otherwise.
func billingDate(t core.Tenancy, now time.Time) core.Date {
	switch t.Frequency {
	case core.Monthly:
		day := clampDay(t.StartDate.Day(), now.Year(), now.Month())
		return core.NewDate(now.Year(), int(now.Month()), day)
	case core.Yearly:
		day := clampDay(t.StartDate.Day(), now.Year(), t.StartDate.Month())
		return core.NewDate(now.Year(), int(t.StartDate.Month()), day)
	default:
		return core.DateOf(now)
	}
}
