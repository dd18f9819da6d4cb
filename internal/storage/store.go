// Package storage provides the persistence abstraction and its backends.
package storage

import (
	"context"

	"rentledger/internal/core"
)

// ExportState tracks whether a settled obligation has been appended to the
// external statement yet.
const (
	ExportPending = "pending"
	ExportSynced  = "synced"
	ExportError   = "error"
)

// ObligationFilter narrows owner-scoped obligation queries. Zero values mean
// "no constraint".
type ObligationFilter struct {
	Kind      core.Kind
	Status    core.Status
	TenancyID string
	DueFrom   core.Date
	DueTo     core.Date
}

// Matches reports whether an obligation satisfies the filter. Backends that
// cannot push the filter into a query (memory) share this logic.
func (f ObligationFilter) Matches(o core.Obligation) bool {
	if f.Kind != "" && o.Kind != f.Kind {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.TenancyID != "" && o.TenancyID != f.TenancyID {
		return false
	}
	if f.DueFrom.IsSet() && o.DueDate.Before(f.DueFrom) {
		return false
	}
	if f.DueTo.IsSet() && f.DueTo.Before(o.DueDate) {
		return false
	}
	return true
}

// Store is the persistence contract consumed by the services and the HTTP
// layer. Every read and write on owned data is owner-scoped; a lookup under
// the wrong owner behaves exactly like a missing record (core.ErrNotFound).
//
// Single-record operations are atomic. ApplyPayment performs the paid-amount
// increment server-side so concurrent payments against the same obligation
// cannot lose an update.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *core.User) error
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	GetUserByID(ctx context.Context, id string) (*core.User, error)

	// Properties
	CreateProperty(ctx context.Context, p *core.Property) error
	GetProperty(ctx context.Context, ownerID, id string) (*core.Property, error)
	ListProperties(ctx context.Context, ownerID string) ([]core.Property, error)
	UpdateProperty(ctx context.Context, p *core.Property) error
	DeleteProperty(ctx context.Context, ownerID, id string) error

	// Tenants
	CreateTenant(ctx context.Context, t *core.Tenant) error
	GetTenant(ctx context.Context, ownerID, id string) (*core.Tenant, error)
	ListTenants(ctx context.Context, ownerID string) ([]core.Tenant, error)
	UpdateTenant(ctx context.Context, t *core.Tenant) error
	DeleteTenant(ctx context.Context, ownerID, id string) error

	// Tenancies
	CreateTenancy(ctx context.Context, t *core.Tenancy) error
	GetTenancy(ctx context.Context, ownerID, id string) (*core.Tenancy, error)
	ListTenancies(ctx context.Context, ownerID string) ([]core.Tenancy, error)
	// ListActiveTenancies spans all owners; it feeds the billing worker.
	ListActiveTenancies(ctx context.Context) ([]core.Tenancy, error)
	UpdateTenancy(ctx context.Context, t *core.Tenancy) error
	SetTenancyLastBilled(ctx context.Context, id string, billed core.Date) error
	DeleteTenancy(ctx context.Context, ownerID, id string) error

	// Obligations
	CreateObligation(ctx context.Context, o *core.Obligation) error
	GetObligation(ctx context.Context, ownerID, id string) (*core.Obligation, error)
	ListObligations(ctx context.Context, ownerID string, f ObligationFilter) ([]core.Obligation, error)
	UpdateObligation(ctx context.Context, o *core.Obligation) error
	DeleteObligation(ctx context.Context, ownerID, id string) error

	// ApplyPayment atomically increments paid_amount by the given cents,
	// re-derives status as of asOf, stamps paid_date on transition to paid,
	// and persists non-empty metadata fields. Returns the updated record.
	ApplyPayment(ctx context.Context, ownerID, id string, incrementCents int64, meta core.PaymentMeta, asOf core.Date) (*core.Obligation, error)

	// MarkOverdue flips pending obligations whose due date precedes asOf to
	// overdue, touching nothing else. Idempotent; returns rows changed.
	MarkOverdue(ctx context.Context, ownerID string, asOf core.Date) (int64, error)

	// Maintenance requests
	CreateMaintenanceRequest(ctx context.Context, m *core.MaintenanceRequest) error
	ListMaintenanceRequests(ctx context.Context, ownerID string) ([]core.MaintenanceRequest, error)
	ResolveMaintenanceRequest(ctx context.Context, ownerID, id string) error
	DeleteMaintenanceRequest(ctx context.Context, ownerID, id string) error

	// Statement export queue
	PendingExportObligations(ctx context.Context, limit int) ([]core.Obligation, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error

	Close() error
}
