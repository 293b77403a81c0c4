package factory

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/generic"
)

// =============================================================================
// SNAPSHOT BUILDER
// =============================================================================

// Builder converts records to cashflow types.
type Builder struct {
	// Location pins parsed dates. nil means time.Local.
	Location *time.Location
}

// NewBuilder creates a builder for local dates.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildSnapshot converts all records of a user. It never fails: every
// problem is reported as a warning and the affected field or source is
// neutralized.
func (b *Builder) BuildSnapshot(r Records) (cashflow.Snapshot, []cashflow.Warning) {
	var snap cashflow.Snapshot
	var warnings []cashflow.Warning

	for _, rec := range r.Accounts {
		a, w := b.Account(rec)
		snap.Accounts = append(snap.Accounts, a)
		warnings = append(warnings, w...)
	}
	for _, rec := range r.Income {
		src, w, ok := b.Income(rec)
		warnings = append(warnings, w...)
		if ok {
			snap.Income = append(snap.Income, src)
		}
	}
	for _, rec := range r.Bills {
		src, w, ok := b.Bill(rec)
		warnings = append(warnings, w...)
		if ok {
			snap.Bills = append(snap.Bills, src)
		}
	}
	for _, rec := range r.Transfers {
		src, w, ok := b.Transfer(rec)
		warnings = append(warnings, w...)
		if ok {
			snap.Transfers = append(snap.Transfers, src)
		}
	}
	return snap, warnings
}

// Account converts an account record. A missing or non-finite balance
// leaves CurrentBalance nil.
func (b *Builder) Account(rec AccountRecord) (cashflow.Account, []cashflow.Warning) {
	var warnings []cashflow.Warning
	a := cashflow.Account{
		ID:                 rec.ID,
		Name:               rec.Name,
		IncludeInSpendable: rec.IncludeInSpendable,
	}

	if rec.CurrentBalance != nil {
		if amt, err := generic.AmountFromFloat(*rec.CurrentBalance); err == nil {
			amt = amt.Round(2)
			a.CurrentBalance = &amt
		} else {
			warnings = append(warnings, amountWarning(rec.ID, cashflow.KindAccount, "current_balance"))
		}
	}

	if rec.IsCreditCard() {
		// Credit cards never count toward spendable money.
		a.IncludeInSpendable = cashflow.Bool(false)
		terms := &cashflow.CreditCardTerms{}
		if rec.CreditLimit != nil {
			if v, err := generic.AmountFromFloat(*rec.CreditLimit); err == nil {
				terms.CreditLimit = v.Round(2)
			}
		}
		if rec.APR != nil && finite(*rec.APR) {
			terms.APR = decimal.NewFromFloat(*rec.APR)
		}
		if rec.PaymentDueDay != nil {
			terms.PaymentDueDay = *rec.PaymentDueDay
		}
		if rec.StatementCloseDay != nil {
			terms.StatementCloseDay = *rec.StatementCloseDay
		}
		if rec.MinimumPayment != nil {
			if v, err := generic.AmountFromFloat(*rec.MinimumPayment); err == nil {
				v = v.Round(2)
				terms.MinimumPayment = &v
			}
		}
		a.CreditCard = terms
	}
	return a, warnings
}

// Income converts an income record. ok is false when the record was dropped.
func (b *Builder) Income(rec IncomeRecord) (cashflow.IncomeSource, []cashflow.Warning, bool) {
	src, warnings, ok := b.eventSource(cashflow.KindIncome, rec.ID, rec.Name, rec.Amount,
		rec.Frequency, rec.NextPayDate, rec.EndDate, rec.IsActive)
	return cashflow.IncomeSource{EventSource: src, Status: rec.Status, InvoiceID: rec.InvoiceID}, warnings, ok
}

// Bill converts a bill record.
func (b *Builder) Bill(rec BillRecord) (cashflow.Bill, []cashflow.Warning, bool) {
	src, warnings, ok := b.eventSource(cashflow.KindBill, rec.ID, rec.Name, rec.Amount,
		rec.Frequency, rec.DueDate, rec.EndDate, rec.IsActive)
	return cashflow.Bill{EventSource: src, Category: rec.Category}, warnings, ok
}

// Transfer converts a transfer record.
func (b *Builder) Transfer(rec TransferRecord) (cashflow.Transfer, []cashflow.Warning, bool) {
	src, warnings, ok := b.eventSource(cashflow.KindTransfer, rec.ID, rec.Name, rec.Amount,
		rec.Frequency, rec.TransferDate, rec.EndDate, rec.IsActive)
	return cashflow.Transfer{EventSource: src, FromAccountID: rec.FromAccountID, ToAccountID: rec.ToAccountID}, warnings, ok
}

// =============================================================================
// HELPERS
// =============================================================================

func (b *Builder) eventSource(
	kind cashflow.Kind,
	id, name string,
	amount *float64,
	frequency, anchor, end string,
	active *bool,
) (cashflow.EventSource, []cashflow.Warning, bool) {
	var warnings []cashflow.Warning
	src := cashflow.EventSource{
		ID:        id,
		Name:      name,
		Frequency: generic.ParseFrequency(frequency),
		Active:    active,
	}

	if amount == nil {
		return src, append(warnings, amountWarning(id, kind, "amount")), false
	}
	amt, err := generic.AmountFromFloat(*amount)
	if err != nil {
		return src, append(warnings, amountWarning(id, kind, "amount")), false
	}
	src.Amount = amt.Round(2)

	if d, err := b.ParseDate(anchor); err == nil {
		src.Anchor = d
	} else {
		warnings = append(warnings, dateWarning(id, kind, "anchor", anchor))
	}

	// An unusable end date is ignored rather than ending the source early.
	if end != "" {
		if d, err := b.ParseDate(end); err == nil {
			src.EndDate = &d
		} else {
			warnings = append(warnings, dateWarning(id, kind, "end date", end))
		}
	}
	return src, warnings, true
}

// ParseDate parses a record date and pins it to the builder's location.
func (b *Builder) ParseDate(s string) (generic.Date, error) {
	d, err := generic.ParseDate(s)
	if err != nil {
		return generic.Date{}, err
	}
	if b != nil && b.Location != nil {
		return generic.DateIn(d.Year(), d.Month(), d.Day(), b.Location), nil
	}
	return d, nil
}

func amountWarning(id string, kind cashflow.Kind, field string) cashflow.Warning {
	return cashflow.Warning{
		SourceID: id, Kind: kind, Code: cashflow.WarnUnparseableAmount,
		Message: field + " is missing or not a finite number",
	}
}

func dateWarning(id string, kind cashflow.Kind, field, value string) cashflow.Warning {
	return cashflow.Warning{
		SourceID: id, Kind: kind, Code: cashflow.WarnUnparseableDate,
		Message: fmt.Sprintf("%s %q is not a valid date", field, value),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
