package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"rentledger/internal/core"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps everything in process memory behind one mutex. It backs
// tests and the zero-setup demo mode; data is gone on restart.
type MemoryStore struct {
	mu sync.Mutex

	users       map[string]core.User
	properties  map[string]core.Property
	tenants     map[string]core.Tenant
	tenancies   map[string]core.Tenancy
	obligations map[string]core.Obligation
	maintenance map[string]core.MaintenanceRequest
	exportState map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]core.User),
		properties:  make(map[string]core.Property),
		tenants:     make(map[string]core.Tenant),
		tenancies:   make(map[string]core.Tenancy),
		obligations: make(map[string]core.Obligation),
		maintenance: make(map[string]core.MaintenanceRequest),
		exportState: make(map[string]string),
	}
}

func (s *MemoryStore) Close() error { return nil }

// Users

func (s *MemoryStore) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := u
	return &out, nil
}

// Properties

func (s *MemoryStore) CreateProperty(_ context.Context, p *core.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.properties[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetProperty(_ context.Context, ownerID, id string) (*core.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok || p.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) ListProperties(_ context.Context, ownerID string) ([]core.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Property
	for _, p := range s.properties {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateProperty(_ context.Context, p *core.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.properties[p.ID]
	if !ok || cur.OwnerID != p.OwnerID {
		return core.ErrNotFound
	}
	cur.Name = p.Name
	cur.Address = p.Address
	cur.Units = p.Units
	cur.Notes = p.Notes
	s.properties[p.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteProperty(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok || p.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.properties, id)
	return nil
}

// Tenants

func (s *MemoryStore) CreateTenant(_ context.Context, t *core.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.tenants[t.ID] = *t
	return nil
}

func (s *MemoryStore) GetTenant(_ context.Context, ownerID, id string) (*core.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok || t.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	out := t
	return &out, nil
}

func (s *MemoryStore) ListTenants(_ context.Context, ownerID string) ([]core.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Tenant
	for _, t := range s.tenants {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateTenant(_ context.Context, t *core.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tenants[t.ID]
	if !ok || cur.OwnerID != t.OwnerID {
		return core.ErrNotFound
	}
	cur.Name = t.Name
	cur.Email = t.Email
	cur.Phone = t.Phone
	s.tenants[t.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteTenant(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok || t.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.tenants, id)
	return nil
}

// Tenancies

func (s *MemoryStore) CreateTenancy(_ context.Context, t *core.Tenancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.tenancies[t.ID] = *t
	return nil
}

func (s *MemoryStore) GetTenancy(_ context.Context, ownerID, id string) (*core.Tenancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenancies[id]
	if !ok || t.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	out := t
	return &out, nil
}

func (s *MemoryStore) ListTenancies(_ context.Context, ownerID string) ([]core.Tenancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Tenancy
	for _, t := range s.tenancies {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListActiveTenancies(_ context.Context) ([]core.Tenancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Tenancy
	for _, t := range s.tenancies {
		if t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateTenancy(_ context.Context, t *core.Tenancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tenancies[t.ID]
	if !ok || cur.OwnerID != t.OwnerID {
		return core.ErrNotFound
	}
	cur.RentAmount = t.RentAmount
	cur.Frequency = t.Frequency
	cur.StartDate = t.StartDate
	cur.EndDate = t.EndDate
	cur.Active = t.Active
	s.tenancies[t.ID] = cur
	return nil
}

func (s *MemoryStore) SetTenancyLastBilled(_ context.Context, id string, billed core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tenancies[id]
	if !ok {
		return core.ErrNotFound
	}
	cur.LastBilled = billed
	s.tenancies[id] = cur
	return nil
}

func (s *MemoryStore) DeleteTenancy(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenancies[id]
	if !ok || t.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.tenancies, id)
	return nil
}

// Obligations

func (s *MemoryStore) CreateObligation(_ context.Context, o *core.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	s.obligations[o.ID] = *o
	s.exportState[o.ID] = ExportPending
	return nil
}

func (s *MemoryStore) GetObligation(_ context.Context, ownerID, id string) (*core.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.obligations[id]
	if !ok || o.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	out := o
	return &out, nil
}

func (s *MemoryStore) ListObligations(_ context.Context, ownerID string, f ObligationFilter) ([]core.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Obligation
	for _, o := range s.obligations {
		if o.OwnerID == ownerID && f.Matches(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UpdateObligation(_ context.Context, o *core.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.obligations[o.ID]
	if !ok || cur.OwnerID != o.OwnerID {
		return core.ErrNotFound
	}
	cur.Description = o.Description
	cur.Amount = o.Amount
	cur.DueDate = o.DueDate
	cur.Status = o.Status
	cur.Method = o.Method
	cur.Reference = o.Reference
	cur.Notes = o.Notes
	cur.Recurrence = o.Recurrence
	s.obligations[o.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteObligation(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.obligations[id]
	if !ok || o.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.obligations, id)
	delete(s.exportState, id)
	return nil
}

func (s *MemoryStore) ApplyPayment(_ context.Context, ownerID, id string, incrementCents int64, meta core.PaymentMeta, asOf core.Date) (*core.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.obligations[id]
	if !ok || o.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}

	o.PaidAmount.Cents += incrementCents
	o.Status = core.DeriveStatus(o, asOf)
	if o.Status == core.StatusPaid && !o.PaidDate.IsSet() {
		if meta.PaidDate.IsSet() {
			o.PaidDate = meta.PaidDate
		} else {
			o.PaidDate = asOf
		}
	}
	if meta.Method != "" {
		o.Method = meta.Method
	}
	if meta.Reference != "" {
		o.Reference = meta.Reference
	}
	if meta.Notes != "" {
		o.Notes = meta.Notes
	}

	s.obligations[id] = o
	out := o
	return &out, nil
}

func (s *MemoryStore) MarkOverdue(_ context.Context, ownerID string, asOf core.Date) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, o := range s.obligations {
		if o.OwnerID != ownerID || o.Status != core.StatusPending {
			continue
		}
		if o.PaidAmount.Cents >= o.Amount.Cents || !o.DueDate.Before(asOf) {
			continue
		}
		o.Status = core.StatusOverdue
		s.obligations[id] = o
		n++
	}
	return n, nil
}

// Maintenance requests

func (s *MemoryStore) CreateMaintenanceRequest(_ context.Context, m *core.MaintenanceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.maintenance[m.ID] = *m
	return nil
}

func (s *MemoryStore) ListMaintenanceRequests(_ context.Context, ownerID string) ([]core.MaintenanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.MaintenanceRequest
	for _, m := range s.maintenance {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ResolveMaintenanceRequest(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maintenance[id]
	if !ok || m.OwnerID != ownerID {
		return core.ErrNotFound
	}
	m.Resolved = true
	s.maintenance[id] = m
	return nil
}

func (s *MemoryStore) DeleteMaintenanceRequest(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maintenance[id]
	if !ok || m.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.maintenance, id)
	return nil
}

// Statement export queue

func (s *MemoryStore) PendingExportObligations(_ context.Context, limit int) ([]core.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Obligation
	for id, o := range s.obligations {
		if s.exportState[id] == ExportPending && o.Status == core.StatusPaid {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidDate.Before(out[j].PaidDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) MarkExported(_ context.Context, id string) error {
	return s.setExportState(id, ExportSynced)
}

func (s *MemoryStore) MarkExportError(_ context.Context, id string) error {
	return s.setExportState(id, ExportError)
}

func (s *MemoryStore) setExportState(id, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.obligations[id]; !ok {
		return core.ErrNotFound
	}
	s.exportState[id] = state
	return nil
}
