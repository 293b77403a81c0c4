package cashflow

import (
	"github.com/warp/cashflow-engine/generic"
)

// =============================================================================
// RECURRENCE EXPANDERS - One per source kind
// =============================================================================
//
// Each expander turns one source into its dated occurrences inside r.
// Inactive sources expand to nothing. Date rules live in generic.Schedule so
// every kind (and the scenario engine) shares the same month-end clamping.

// ExpandIncome expands an income source within r.
func ExpandIncome(src IncomeSource, r generic.Period) []Occurrence {
	if !src.IsActive() {
		return nil
	}
	dates := src.Schedule().Expand(r)
	out := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		out = append(out, Occurrence{
			Date:      d,
			SourceID:  src.ID,
			Name:      src.Name,
			Amount:    src.Amount,
			Kind:      KindIncome,
			Frequency: src.Frequency,
			Status:    src.Status,
			InvoiceID: src.InvoiceID,
		})
	}
	return out
}

// ExpandBill expands a bill within r. Amounts are magnitudes.
func ExpandBill(src Bill, r generic.Period) []Occurrence {
	if !src.IsActive() {
		return nil
	}
	dates := src.Schedule().Expand(r)
	out := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		out = append(out, Occurrence{
			Date:      d,
			SourceID:  src.ID,
			Name:      src.Name,
			Amount:    src.Amount.Abs(),
			Kind:      KindBill,
			Frequency: src.Frequency,
		})
	}
	return out
}

// ExpandTransfer expands a transfer within r. Amounts are magnitudes.
func ExpandTransfer(src Transfer, r generic.Period) []Occurrence {
	if !src.IsActive() {
		return nil
	}
	dates := src.Schedule().Expand(r)
	out := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		out = append(out, Occurrence{
			Date:          d,
			SourceID:      src.ID,
			Name:          src.Name,
			Amount:        src.Amount.Abs(),
			Kind:          KindTransfer,
			Frequency:     src.Frequency,
			FromAccountID: src.FromAccountID,
			ToAccountID:   src.ToAccountID,
		})
	}
	return out
}

// CreditCardPaymentStatus tags projected card payments.
const CreditCardPaymentStatus = "estimated"

// ExpandCreditCardPayment projects the flat monthly payment of an eligible
// card as bill occurrences, starting at the first due day on or after r.Start.
func ExpandCreditCardPayment(card Account, r generic.Period) []Occurrence {
	if !card.PaymentEligible() || r.IsEmpty() {
		return nil
	}
	due := card.CreditCard.PaymentDueDay
	anchor := generic.DateIn(r.Start.Year(), r.Start.Month(), due, r.Start.Location())
	if anchor.Before(r.Start) {
		anchor = anchor.AddMonthsClamped(1)
	}

	payment := card.CreditCard.EstimatedPayment(*card.CurrentBalance)
	schedule := generic.Schedule{Frequency: generic.FreqMonthly, Anchor: anchor}

	name := card.Name
	if name == "" {
		name = card.ID
	}

	var out []Occurrence
	for _, d := range schedule.Expand(r) {
		out = append(out, Occurrence{
			Date:      d,
			SourceID:  card.ID,
			Name:      name + " payment",
			Amount:    payment,
			Kind:      KindBill,
			Frequency: generic.FreqMonthly,
			Status:    CreditCardPaymentStatus,
		})
	}
	return out
}
