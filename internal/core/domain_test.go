package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !d.Equal(NewDate(2024, 2, 5)) {
		t.Fatalf("parsed %s, want 2024-02-05", d)
	}
	if _, err := ParseDate("05/02/2024"); err == nil {
		t.Fatalf("expected error for wrong format")
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatalf("expected error for empty string")
	}
}

func TestDateBefore_IgnoresTimeOfDay(t *testing.T) {
	late := Date{Time: time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)}
	early := Date{Time: time.Date(2024, 1, 10, 0, 1, 0, 0, time.UTC)}
	if late.Before(early) || early.Before(late) {
		t.Fatalf("same calendar day must not compare as before")
	}
	if !early.Before(NewDate(2024, 1, 11)) {
		t.Fatalf("expected 2024-01-10 before 2024-01-11")
	}
}

func TestObligationValidate(t *testing.T) {
	good := Obligation{
		OwnerID:     "owner-1",
		Kind:        KindRent,
		Description: "January rent",
		Amount:      Money{Cents: 120000},
		DueDate:     NewDate(2024, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Obligation{
		{Kind: KindRent, Description: "a", Amount: Money{Cents: 1}, DueDate: NewDate(2024, 1, 1)},                                                    // no owner
		{OwnerID: "o", Kind: "loan", Description: "a", Amount: Money{Cents: 1}, DueDate: NewDate(2024, 1, 1)},                                        // bad kind
		{OwnerID: "o", Kind: KindRent, Description: "a", Amount: Money{Cents: 0}, DueDate: NewDate(2024, 1, 1)},                                      // zero amount
		{OwnerID: "o", Kind: KindRent, Description: "a", Amount: Money{Cents: 1}, PaidAmount: Money{Cents: -1}, DueDate: NewDate(2024, 1, 1)},        // negative paid
		{OwnerID: "o", Kind: KindRent, Description: "a", Amount: Money{Cents: 1}},                                                                   // zero due date
		{OwnerID: "o", Kind: KindRent, Description: "", Amount: Money{Cents: 1}, DueDate: NewDate(2024, 1, 1)},                                       // empty description
	}
	for i, o := range bads {
		if err := o.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTenancyValidate(t *testing.T) {
	good := Tenancy{
		OwnerID:    "owner-1",
		PropertyID: "prop-1",
		TenantID:   "ten-1",
		RentAmount: Money{Cents: 120000},
		Frequency:  Monthly,
		StartDate:  NewDate(2024, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	ended := good
	ended.EndDate = NewDate(2023, 12, 1)
	if err := ended.Validate(); err == nil {
		t.Fatalf("expected error for end date before start date")
	}

	badFreq := good
	badFreq.Frequency = "fortnightly"
	if err := badFreq.Validate(); err == nil {
		t.Fatalf("expected error for unknown frequency")
	}
}
