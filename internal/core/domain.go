package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
	StatusPaid    Status = "paid"
)

const (
	KindRent    Kind = "rent"
	KindExpense Kind = "expense"
)

const (
	Monthly Frequency = "monthly"
	Weekly  Frequency = "weekly"
	Yearly  Frequency = "yearly"
)

type (
	// Status is the derived lifecycle state of an obligation.
	Status string

	// Kind distinguishes rent owed by a tenant from a cost owed by the landlord.
	Kind string

	Frequency string

	// Date is a calendar date. The time-of-day component is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Recurrence marks an obligation as part of a repeating series.
	// It is informational: the billing processor generates the next period,
	// never the ledger engine.
	Recurrence struct {
		IsRecurring bool
		Frequency   Frequency
	}

	// PaymentMeta carries optional metadata recorded alongside a payment.
	// Fields are persisted verbatim; only PaidDate affects derived state.
	PaymentMeta struct {
		PaidDate  Date
		Method    string
		Reference string
		Notes     string
	}

	// Obligation is a monetary amount owed, tracked independently per record.
	// PaidAmount accumulates across partial payments; Status is always
	// derivable from Amount, PaidAmount and DueDate.
	Obligation struct {
		ID          string
		OwnerID     string
		TenancyID   string
		Kind        Kind
		Description string
		Amount      Money
		PaidAmount  Money
		DueDate     Date
		PaidDate    Date
		Status      Status
		Method      string
		Reference   string
		Notes       string
		Recurrence  Recurrence
		CreatedAt   time.Time
	}

	Property struct {
		ID        string
		OwnerID   string
		Name      string
		Address   string
		Units     int
		Notes     string
		CreatedAt time.Time
	}

	Tenant struct {
		ID        string
		OwnerID   string
		Name      string
		Email     string
		Phone     string
		CreatedAt time.Time
	}

	// Tenancy binds a tenant to a property and is the origin of recurring
	// rent obligations.
	Tenancy struct {
		ID         string
		OwnerID    string
		PropertyID string
		TenantID   string
		RentAmount Money
		Frequency  Frequency
		StartDate  Date
		EndDate    Date
		LastBilled Date
		Active     bool
		CreatedAt  time.Time
	}

	// User is an account holder. Every record a user owns is scoped by
	// their id; users never see each other's data.
	User struct {
		ID           string
		Email        string
		Name         string
		PasswordHash string
		Currency     string
		CreatedAt    time.Time
	}

	MaintenanceRequest struct {
		ID          string
		OwnerID     string
		PropertyID  string
		Title       string
		Description string
		Priority    string
		Resolved    bool
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotFound      = errors.New("not found")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrEmptyOwner    = errors.New("empty owner id")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return DateOf(d.Time).Time.Before(DateOf(other.Time).Time)
}

func (d Date) Equal(other Date) bool {
	return DateOf(d.Time).Time.Equal(DateOf(other.Time).Time)
}

func (d Date) IsSet() bool {
	return !d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (k Kind) Validate() error {
	switch k {
	case KindRent, KindExpense:
		return nil
	}
	return ErrInvalidKind
}

func (f Frequency) Validate() error {
	switch f {
	case Monthly, Weekly, Yearly:
		return nil
	}
	return errors.New("invalid frequency")
}

// Validate checks structural invariants on a new obligation. Amount must be
// positive; PaidAmount may be zero but never negative.
func (o Obligation) Validate() error {
	if strings.TrimSpace(o.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if err := o.Kind.Validate(); err != nil {
		return err
	}
	if o.Amount.Cents <= 0 || o.PaidAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := o.DueDate.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(o.Description)) == 0 {
		return errors.New("empty description")
	}
	if len(o.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Overpaid reports whether cumulative payments exceed the amount owed.
// Overpayment is accepted, not rejected; callers that care can detect it here.
func (o Obligation) Overpaid() bool {
	return o.PaidAmount.Cents > o.Amount.Cents
}

func (t Tenancy) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(t.PropertyID) == "" || strings.TrimSpace(t.TenantID) == "" {
		return errors.New("tenancy requires property and tenant")
	}
	if t.RentAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if err := t.Frequency.Validate(); err != nil {
		return err
	}
	if err := t.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if t.EndDate.IsSet() && t.EndDate.Before(t.StartDate) {
		return errors.New("end date must not precede start date")
	}
	return nil
}

func (p Property) Validate() error {
	if strings.TrimSpace(p.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Tenant) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
