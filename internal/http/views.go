package http

import (
	"time"

	"rentledger/internal/core"
)

// JSON views keep wire shapes stable and independent from the domain
// structs. Dates render as YYYY-MM-DD, amounts as integer cents plus a
// formatted string in the user's currency.

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserView(u *core.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Currency:  u.Currency,
		CreatedAt: u.CreatedAt,
	}
}

type propertyView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Units     int       `json:"units"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func newPropertyView(p core.Property) propertyView {
	return propertyView{
		ID:        p.ID,
		Name:      p.Name,
		Address:   p.Address,
		Units:     p.Units,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
	}
}

type tenantView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func newTenantView(t core.Tenant) tenantView {
	return tenantView{
		ID:        t.ID,
		Name:      t.Name,
		Email:     t.Email,
		Phone:     t.Phone,
		CreatedAt: t.CreatedAt,
	}
}

type tenancyView struct {
	ID            string `json:"id"`
	PropertyID    string `json:"property_id"`
	TenantID      string `json:"tenant_id"`
	RentCents     int64  `json:"rent_cents"`
	RentFormatted string `json:"rent_formatted"`
	Frequency     string `json:"frequency"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date,omitempty"`
	LastBilled    string `json:"last_billed,omitempty"`
	Active        bool   `json:"active"`
}

func newTenancyView(t core.Tenancy, currency string) tenancyView {
	return tenancyView{
		ID:            t.ID,
		PropertyID:    t.PropertyID,
		TenantID:      t.TenantID,
		RentCents:     t.RentAmount.Cents,
		RentFormatted: core.FormatAmount(t.RentAmount.Cents, currency),
		Frequency:     string(t.Frequency),
		StartDate:     t.StartDate.String(),
		EndDate:       t.EndDate.String(),
		LastBilled:    t.LastBilled.String(),
		Active:        t.Active,
	}
}

type obligationView struct {
	ID          string `json:"id"`
	TenancyID   string `json:"tenancy_id,omitempty"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	PaidCents   int64  `json:"paid_cents"`
	Formatted   string `json:"amount_formatted"`
	DueDate     string `json:"due_date"`
	PaidDate    string `json:"paid_date,omitempty"`
	Status      string `json:"status"`
	Method      string `json:"method,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Recurring   bool   `json:"recurring"`
	Frequency   string `json:"frequency,omitempty"`
	Overpaid    bool   `json:"overpaid"`
}

func newObligationView(o core.Obligation, currency string) obligationView {
	return obligationView{
		ID:          o.ID,
		TenancyID:   o.TenancyID,
		Kind:        string(o.Kind),
		Description: o.Description,
		AmountCents: o.Amount.Cents,
		PaidCents:   o.PaidAmount.Cents,
		Formatted:   core.FormatAmount(o.Amount.Cents, currency),
		DueDate:     o.DueDate.String(),
		PaidDate:    o.PaidDate.String(),
		Status:      string(o.Status),
		Method:      o.Method,
		Reference:   o.Reference,
		Notes:       o.Notes,
		Recurring:   o.Recurrence.IsRecurring,
		Frequency:   string(o.Recurrence.Frequency),
		Overpaid:    o.Overpaid(),
	}
}

func newObligationViews(obs []core.Obligation, currency string) []obligationView {
	out := make([]obligationView, 0, len(obs))
	for _, o := range obs {
		out = append(out, newObligationView(o, currency))
	}
	return out
}

type maintenanceView struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Resolved    bool      `json:"resolved"`
	CreatedAt   time.Time `json:"created_at"`
}

func newMaintenanceView(m core.MaintenanceRequest) maintenanceView {
	return maintenanceView{
		ID:          m.ID,
		PropertyID:  m.PropertyID,
		Title:       m.Title,
		Description: m.Description,
		Priority:    m.Priority,
		Resolved:    m.Resolved,
		CreatedAt:   m.CreatedAt,
	}
}

type metricsView struct {
	TotalCents   int64   `json:"total_cents"`
	PaidCents    int64   `json:"paid_cents"`
	Outstanding  int64   `json:"outstanding_cents"`
	PendingCount int     `json:"pending_count"`
	OverdueCount int     `json:"overdue_count"`
	PaidCount    int     `json:"paid_count"`
	Count        int     `json:"count"`
	PaidPercent  float64 `json:"paid_percent"`
	TotalFmt     string  `json:"total_formatted"`
	PaidFmt      string  `json:"paid_formatted"`
}

func newMetricsView(m core.Metrics, currency string) metricsView {
	outstanding := m.TotalAmount.Cents - m.PaidAmount.Cents
	if outstanding < 0 {
		outstanding = 0
	}
	return metricsView{
		TotalCents:   m.TotalAmount.Cents,
		PaidCents:    m.PaidAmount.Cents,
		Outstanding:  outstanding,
		PendingCount: m.PendingCount,
		OverdueCount: m.OverdueCount,
		PaidCount:    m.PaidCount,
		Count:        m.Count,
		PaidPercent:  m.PaidPercent(),
		TotalFmt:     core.FormatAmount(m.TotalAmount.Cents, currency),
		PaidFmt:      core.FormatAmount(m.PaidAmount.Cents, currency),
	}
}
