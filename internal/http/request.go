package http

import (
	"github.com/go-playground/validator/v10"

	"rentledger/internal/core"
	"rentledger/internal/storage"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type propertyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=300"`
	Units   int    `json:"units" validate:"omitempty,min=1,max=1000"`
	Notes   string `json:"notes" validate:"max=1000"`
}

type tenantRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"max=50"`
}

type tenancyRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	TenantID   string `json:"tenant_id" validate:"required"`
	RentAmount string `json:"rent_amount" validate:"required"`
	Frequency  string `json:"frequency" validate:"required,oneof=weekly monthly yearly"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"omitempty"`
}

type obligationRequest struct {
	TenancyID   string `json:"tenancy_id"`
	Kind        string `json:"kind" validate:"required,oneof=rent expense"`
	Description string `json:"description" validate:"required,max=200"`
	Amount      string `json:"amount" validate:"required"`
	DueDate     string `json:"due_date" validate:"required"`
	Notes       string `json:"notes" validate:"max=1000"`
}

type paymentRequest struct {
	Amount    string `json:"amount" validate:"required"`
	PaidDate  string `json:"paid_date" validate:"omitempty"`
	Method    string `json:"method" validate:"max=50"`
	Reference string `json:"reference" validate:"max=100"`
	Notes     string `json:"notes" validate:"max=1000"`
}

type maintenanceRequest struct {
	PropertyID  string `json:"property_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
}

// parseAmount converts a decimal string into cents using the shared parser,
// so the API accepts "850.00" and "850,00" alike.
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, core.ErrInvalidAmount
	}
	return core.Money{Cents: cents}, nil
}

// obligationFilterFromQuery builds a store filter from list query params.
// Bad date values surface as errors rather than being silently dropped.
func obligationFilterFromQuery(kind, status, tenancyID, from, to string) (storage.ObligationFilter, error) {
	f := storage.ObligationFilter{
		Kind:      core.Kind(kind),
		Status:    core.Status(status),
		TenancyID: tenancyID,
	}
	if from != "" {
		d, err := core.ParseDate(from)
		if err != nil {
			return f, err
		}
		f.DueFrom = d
	}
	if to != "" {
		d, err := core.ParseDate(to)
		if err != nil {
			return f, err
		}
		f.DueTo = d
	}
	return f, nil
}
