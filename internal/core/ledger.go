// Ledger reconciliation engine: pure derivations over obligations.
//
// The rules are deliberately total and side-effect free so the same
// derivation runs identically in the service layer, the overdue sweep,
// and the dashboard aggregation.
package core

// DeriveStatus computes the lifecycle status of an obligation as of a
// reference date.
//
// Payment takes precedence over the calendar: a fully paid obligation is
// paid even when its due date has passed.
//
//  1. PaidAmount >= Amount            -> paid
//  2. DueDate before asOf             -> overdue
//  3. otherwise                       -> pending
func DeriveStatus(o Obligation, asOf Date) Status {
	if o.PaidAmount.Cents >= o.Amount.Cents {
		return StatusPaid
	}
	if o.DueDate.Before(asOf) {
		return StatusOverdue
	}
	return StatusPending
}

// RecordPayment applies an incremental payment to an obligation and returns
// the updated copy. The increment is the amount being paid now, never the
// new cumulative total.
//
// Fails with ErrInvalidAmount for a non-positive increment; the input
// obligation is returned unchanged in that case. On transition to paid,
// PaidDate is taken from meta.PaidDate when set, otherwise from now.
// Overpayment is accepted; see Obligation.Overpaid.
func RecordPayment(o Obligation, increment Money, meta PaymentMeta, now Date) (Obligation, error) {
	if increment.Cents <= 0 {
		return o, ErrInvalidAmount
	}

	o.PaidAmount = o.PaidAmount.Add(increment)
	o.Status = DeriveStatus(o, now)

	if o.Status == StatusPaid && !o.PaidDate.IsSet() {
		if meta.PaidDate.IsSet() {
			o.PaidDate = meta.PaidDate
		} else {
			o.PaidDate = now
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

	return o, nil
}

// Metrics is the fold of a set of obligations used by the dashboard.
type Metrics struct {
	TotalAmount  Money
	PaidAmount   Money
	PendingCount int
	OverdueCount int
	PaidCount    int
	Count        int
}

// AggregateMetrics folds a set of obligations into dashboard totals.
// Status is re-derived per record as of the reference date, so stale
// persisted statuses cannot skew the counts. Safe on an empty slice.
func AggregateMetrics(obs []Obligation, asOf Date) Metrics {
	var m Metrics
	for _, o := range obs {
		m.TotalAmount = m.TotalAmount.Add(o.Amount)
		m.PaidAmount = m.PaidAmount.Add(o.PaidAmount)
		m.Count++
		switch DeriveStatus(o, asOf) {
		case StatusPaid:
			m.PaidCount++
		case StatusOverdue:
			m.OverdueCount++
		default:
			m.PendingCount++
		}
	}
	return m
}

// PaidPercent returns collected-over-total as a percentage in [0, 100+].
// A zero total yields 0, never NaN.
func (m Metrics) PaidPercent() float64 {
	if m.TotalAmount.Cents == 0 {
		return 0
	}
	return float64(m.PaidAmount.Cents) / float64(m.TotalAmount.Cents) * 100
}
