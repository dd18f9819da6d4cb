package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/storage"
)

// LedgerService orchestrates obligation writes across the store and the
// event stream. Event publishing is best-effort: a broker outage never fails
// a request that already committed locally.
type LedgerService struct {
	store      storage.Store
	amqpClient *amqp.Client
}

func NewLedgerService(store storage.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// CreateObligation validates and persists a new obligation. Status starts
// derived against today so a past-due record is born overdue.
func (s *LedgerService) CreateObligation(ctx context.Context, o core.Obligation) (*core.Obligation, error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	o.Status = core.DeriveStatus(o, core.DateOf(time.Now()))

	if err := s.store.CreateObligation(ctx, &o); err != nil {
		return nil, fmt.Errorf("create obligation: %w", err)
	}

	s.publishEvent(ctx, amqp.EventObligationCreated, &o)
	return &o, nil
}

// RecordPayment applies a positive payment increment. The store does the
// arithmetic atomically; this layer only validates and emits the event.
func (s *LedgerService) RecordPayment(ctx context.Context, ownerID, id string, amount core.Money, meta core.PaymentMeta) (*core.Obligation, error) {
	if amount.Cents <= 0 {
		return nil, core.ErrInvalidAmount
	}

	o, err := s.store.ApplyPayment(ctx, ownerID, id, amount.Cents, meta, core.DateOf(time.Now()))
	if err != nil {
		return nil, err
	}

	if o.Overpaid() {
		slog.WarnContext(ctx, "Obligation overpaid",
			"obligation_id", o.ID,
			"amount_cents", o.Amount.Cents,
			"paid_cents", o.PaidAmount.Cents)
	}

	s.publishEvent(ctx, amqp.EventPaymentRecorded, o)
	return o, nil
}

// SweepOverdue flips every past-due unpaid obligation of the owner to
// overdue. Safe to run any number of times.
func (s *LedgerService) SweepOverdue(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.store.MarkOverdue(ctx, ownerID, core.DateOf(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("sweep overdue: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Swept overdue obligations", "owner_id", ownerID, "count", n)
	}
	return n, nil
}

// Metrics sweeps first so the aggregates never show a stale pending status,
// then folds the matching obligations.
func (s *LedgerService) Metrics(ctx context.Context, ownerID string, f storage.ObligationFilter) (core.Metrics, error) {
	if _, err := s.SweepOverdue(ctx, ownerID); err != nil {
		return core.Metrics{}, err
	}

	obs, err := s.store.ListObligations(ctx, ownerID, f)
	if err != nil {
		return core.Metrics{}, fmt.Errorf("list obligations: %w", err)
	}
	return core.AggregateMetrics(obs, core.DateOf(time.Now())), nil
}

// ListObligations sweeps and then lists, so statuses are current.
func (s *LedgerService) ListObligations(ctx context.Context, ownerID string, f storage.ObligationFilter) ([]core.Obligation, error) {
	if _, err := s.SweepOverdue(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.store.ListObligations(ctx, ownerID, f)
}

// GetObligation sweeps and then reads one record, so a single-record read
// never reports a stale pending status.
func (s *LedgerService) GetObligation(ctx context.Context, ownerID, id string) (*core.Obligation, error) {
	if _, err := s.SweepOverdue(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.store.GetObligation(ctx, ownerID, id)
}

// CreateTenancy persists a tenancy and bills its first rent obligation due
// on the start date.
func (s *LedgerService) CreateTenancy(ctx context.Context, t core.Tenancy) (*core.Tenancy, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.Active = true
	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateTenancy(ctx, &t); err != nil {
		return nil, fmt.Errorf("create tenancy: %w", err)
	}

	first := core.Obligation{
		OwnerID:     t.OwnerID,
		TenancyID:   t.ID,
		Kind:        core.KindRent,
		Description: "Rent due " + t.StartDate.String(),
		Amount:      t.RentAmount,
		DueDate:     t.StartDate,
		Recurrence:  core.Recurrence{IsRecurring: true, Frequency: t.Frequency},
	}
	if _, err := s.CreateObligation(ctx, first); err != nil {
		return nil, fmt.Errorf("create first rent obligation: %w", err)
	}
	if err := s.store.SetTenancyLastBilled(ctx, t.ID, t.StartDate); err != nil {
		return nil, fmt.Errorf("stamp last billed: %w", err)
	}
	t.LastBilled = t.StartDate

	slog.InfoContext(ctx, "Tenancy created",
		"tenancy_id", t.ID,
		"owner_id", t.OwnerID,
		"rent_cents", t.RentAmount.Cents,
		"frequency", t.Frequency)
	return &t, nil
}

func (s *LedgerService) publishEvent(ctx context.Context, event string, o *core.Obligation) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewLedgerEventMessage(event, o.ID, o.OwnerID, string(o.Kind))
	if err := s.amqpClient.PublishLedgerEvent(ctx, msg); err != nil {
		// Local write already committed; the export worker catches up via
		// the pending-export scan.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"event", event,
			"obligation_id", o.ID,
			"error", err)
	}
}

// Close releases the service's connections.
func (s *LedgerService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
