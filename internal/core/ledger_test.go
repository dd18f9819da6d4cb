package core

import (
	"testing"
)

func TestDeriveStatus(t *testing.T) {
	asOf := NewDate(2024, 2, 1)

	tests := []struct {
		name string
		ob   Obligation
		want Status
	}{
		{
			name: "unpaid past due is overdue",
			ob:   Obligation{Amount: Money{Cents: 500000}, PaidAmount: Money{Cents: 0}, DueDate: NewDate(2024, 1, 1)},
			want: StatusOverdue,
		},
		{
			name: "unpaid future due is pending",
			ob:   Obligation{Amount: Money{Cents: 500000}, DueDate: NewDate(2024, 3, 1)},
			want: StatusPending,
		},
		{
			name: "unpaid due today is pending",
			ob:   Obligation{Amount: Money{Cents: 500000}, DueDate: NewDate(2024, 2, 1)},
			want: StatusPending,
		},
		{
			name: "fully paid past due is paid not overdue",
			ob:   Obligation{Amount: Money{Cents: 10000}, PaidAmount: Money{Cents: 10000}, DueDate: NewDate(2023, 12, 1)},
			want: StatusPaid,
		},
		{
			name: "overpaid is paid",
			ob:   Obligation{Amount: Money{Cents: 10000}, PaidAmount: Money{Cents: 15000}, DueDate: NewDate(2024, 3, 1)},
			want: StatusPaid,
		},
		{
			name: "partially paid past due is overdue",
			ob:   Obligation{Amount: Money{Cents: 10000}, PaidAmount: Money{Cents: 9999}, DueDate: NewDate(2024, 1, 15)},
			want: StatusOverdue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.ob, asOf); got != tt.want {
				t.Errorf("DeriveStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordPayment_PartialThenSettled(t *testing.T) {
	now := NewDate(2024, 2, 1)
	ob := Obligation{
		Amount:  Money{Cents: 500000},
		DueDate: NewDate(2024, 1, 1),
		Status:  StatusOverdue,
	}

	// Partial payment leaves the obligation overdue.
	ob, err := RecordPayment(ob, Money{Cents: 200000}, PaymentMeta{}, now)
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if ob.PaidAmount.Cents != 200000 {
		t.Errorf("PaidAmount = %d, want 200000", ob.PaidAmount.Cents)
	}
	if ob.Status != StatusOverdue {
		t.Errorf("Status = %v, want overdue", ob.Status)
	}
	if ob.PaidDate.IsSet() {
		t.Errorf("PaidDate set on partial payment")
	}

	// Settling payment flips to paid and stamps the provided paid date.
	paidOn := NewDate(2024, 2, 5)
	ob, err = RecordPayment(ob, Money{Cents: 300000}, PaymentMeta{PaidDate: paidOn}, now)
	if err != nil {
		t.Fatalf("settling payment: %v", err)
	}
	if ob.PaidAmount.Cents != 500000 {
		t.Errorf("PaidAmount = %d, want 500000", ob.PaidAmount.Cents)
	}
	if ob.Status != StatusPaid {
		t.Errorf("Status = %v, want paid", ob.Status)
	}
	if !ob.PaidDate.Equal(paidOn) {
		t.Errorf("PaidDate = %s, want %s", ob.PaidDate, paidOn)
	}
}

// The increment contract: the input is the amount being added now. A second
// payment of the same value must accumulate, not overwrite.
func TestRecordPayment_IncrementNotTotal(t *testing.T) {
	now := NewDate(2024, 6, 1)
	ob := Obligation{Amount: Money{Cents: 30000}, DueDate: NewDate(2024, 6, 15)}

	ob, err := RecordPayment(ob, Money{Cents: 10000}, PaymentMeta{}, now)
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	ob, err = RecordPayment(ob, Money{Cents: 10000}, PaymentMeta{}, now)
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if ob.PaidAmount.Cents != 20000 {
		t.Fatalf("PaidAmount = %d, want 20000 (total semantics would give 10000)", ob.PaidAmount.Cents)
	}
}

func TestRecordPayment_InvalidIncrement(t *testing.T) {
	now := NewDate(2024, 6, 1)
	orig := Obligation{Amount: Money{Cents: 30000}, PaidAmount: Money{Cents: 5000}, DueDate: NewDate(2024, 6, 15), Status: StatusPending}

	for _, cents := range []int64{0, -1, -30000} {
		got, err := RecordPayment(orig, Money{Cents: cents}, PaymentMeta{}, now)
		if err != ErrInvalidAmount {
			t.Errorf("increment %d: err = %v, want ErrInvalidAmount", cents, err)
		}
		if got != orig {
			t.Errorf("increment %d: obligation mutated on rejected payment", cents)
		}
	}
}

func TestRecordPayment_DefaultsPaidDateToNow(t *testing.T) {
	now := NewDate(2024, 7, 3)
	ob := Obligation{Amount: Money{Cents: 1000}, DueDate: NewDate(2024, 7, 1)}

	ob, err := RecordPayment(ob, Money{Cents: 1000}, PaymentMeta{}, now)
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if !ob.PaidDate.Equal(now) {
		t.Errorf("PaidDate = %s, want %s", ob.PaidDate, now)
	}
}

func TestRecordPayment_KeepsMetadata(t *testing.T) {
	now := NewDate(2024, 7, 3)
	ob := Obligation{Amount: Money{Cents: 1000}, DueDate: NewDate(2024, 7, 10)}

	meta := PaymentMeta{Method: "bank_transfer", Reference: "TX-42", Notes: "first installment"}
	ob, err := RecordPayment(ob, Money{Cents: 400}, meta, now)
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if ob.Method != "bank_transfer" || ob.Reference != "TX-42" || ob.Notes != "first installment" {
		t.Errorf("metadata not persisted: %+v", ob)
	}

	// A later payment without metadata must not blank out earlier values.
	ob, err = RecordPayment(ob, Money{Cents: 600}, PaymentMeta{}, now)
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if ob.Method != "bank_transfer" {
		t.Errorf("Method cleared by empty metadata")
	}
}

func TestRecordPayment_OverpaymentObservable(t *testing.T) {
	now := NewDate(2024, 7, 3)
	ob := Obligation{Amount: Money{Cents: 1000}, PaidAmount: Money{Cents: 1000}, DueDate: NewDate(2024, 7, 1), Status: StatusPaid}

	ob, err := RecordPayment(ob, Money{Cents: 500}, PaymentMeta{}, now)
	if err != nil {
		t.Fatalf("overpayment rejected: %v", err)
	}
	if ob.Status != StatusPaid {
		t.Errorf("Status = %v, want paid", ob.Status)
	}
	if !ob.Overpaid() {
		t.Errorf("Overpaid() = false, want true at PaidAmount=%d Amount=%d", ob.PaidAmount.Cents, ob.Amount.Cents)
	}
}

func TestAggregateMetrics(t *testing.T) {
	asOf := NewDate(2024, 2, 1)
	obs := []Obligation{
		{Amount: Money{Cents: 10000}, PaidAmount: Money{Cents: 10000}, DueDate: NewDate(2024, 1, 1)},
		{Amount: Money{Cents: 20000}, PaidAmount: Money{Cents: 5000}, DueDate: NewDate(2024, 1, 15)},
		{Amount: Money{Cents: 5000}, PaidAmount: Money{Cents: 0}, DueDate: NewDate(2024, 3, 1)},
	}

	m := AggregateMetrics(obs, asOf)
	if m.TotalAmount.Cents != 35000 {
		t.Errorf("TotalAmount = %d, want 35000", m.TotalAmount.Cents)
	}
	if m.PaidAmount.Cents != 15000 {
		t.Errorf("PaidAmount = %d, want 15000", m.PaidAmount.Cents)
	}
	if m.Count != 3 || m.PendingCount != 1 || m.OverdueCount != 1 || m.PaidCount != 1 {
		t.Errorf("counts = %+v, want count 3, pending 1, overdue 1, paid 1", m)
	}
	if m.PaidCount != m.Count-m.PendingCount-m.OverdueCount {
		t.Errorf("status counts do not account for all records: %+v", m)
	}
}

func TestAggregateMetrics_Empty(t *testing.T) {
	m := AggregateMetrics(nil, NewDate(2024, 1, 1))
	if m != (Metrics{}) {
		t.Fatalf("AggregateMetrics(nil) = %+v, want zero value", m)
	}
	if pct := m.PaidPercent(); pct != 0 {
		t.Fatalf("PaidPercent on empty set = %v, want 0", pct)
	}
}

func TestMetricsPaidPercent(t *testing.T) {
	m := Metrics{TotalAmount: Money{Cents: 20000}, PaidAmount: Money{Cents: 5000}}
	if pct := m.PaidPercent(); pct != 25 {
		t.Errorf("PaidPercent = %v, want 25", pct)
	}
}

// Status derived by the engine must match the persisted status after any
// sequence of payments and sweeps.
func TestStatusInvariantAfterPaymentSequence(t *testing.T) {
	now := NewDate(2024, 2, 1)
	ob := Obligation{Amount: Money{Cents: 9000}, DueDate: NewDate(2024, 1, 20), Status: StatusPending}

	increments := []int64{1000, 2500, 2500, 4000}
	for _, inc := range increments {
		var err error
		ob, err = RecordPayment(ob, Money{Cents: inc}, PaymentMeta{}, now)
		if err != nil {
			t.Fatalf("payment %d: %v", inc, err)
		}
		if derived := DeriveStatus(ob, now); derived != ob.Status {
			t.Fatalf("after increment %d: stored status %v != derived %v", inc, ob.Status, derived)
		}
	}
	if ob.Status != StatusPaid {
		t.Fatalf("final status = %v, want paid", ob.Status)
	}
}
