/*
Package cashflow implements the deterministic cash-flow forecasting engine.

PURPOSE:
  Given an account snapshot and a set of recurring or one-time financial
  events, the engine projects a day-by-day balance over a finite horizon,
  classifies each day's health, detects bill collisions and computes how much
  is safe to spend today.

DATA FLOW:
  raw records (factory) -> expanders (expand.go) -> occurrences
    -> Generator (forecast.go): merge per day, accumulate, classify
    -> CalendarData -> DetectCollisions (collision.go), scenario package

PURITY:
  Nothing in this package performs I/O or reads the wall clock. "Today" is
  an explicit input, and the only side channel is an injected logger that
  discards everything unless the caller supplies one.

FAIL-OPEN FLAGS:
  Active and IncludeInSpendable are pointers. A nil flag is treated as true,
  matching how rows with a missing column have always been handled.

SEE ALSO:
  - generic/schedule.go: Recurrence expansion rules
  - scenario/: What-if overlay on a finished forecast
  - factory/: Converting stored rows into these types
*/
package cashflow

import (
	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/generic"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

// Account is a bank or credit-card account as handed over by the store.
type Account struct {
	ID   string
	Name string

	// CurrentBalance is nil when the stored value could not be used.
	CurrentBalance *generic.Amount

	// IncludeInSpendable decides whether the account counts toward the
	// starting balance. nil means yes.
	IncludeInSpendable *bool

	// CreditCard is set for credit-card accounts.
	CreditCard *CreditCardTerms
}

// Spendable reports whether the account contributes to the starting balance.
func (a Account) Spendable() bool {
	return a.IncludeInSpendable == nil || *a.IncludeInSpendable
}

// CreditCardTerms holds the credit-card specific fields of an account.
type CreditCardTerms struct {
	CreditLimit       generic.Amount
	APR               decimal.Decimal // annual percentage rate, 24.99 means 24.99%
	PaymentDueDay     int             // 1-28; anything else disables payment projection
	StatementCloseDay int
	MinimumPayment    *generic.Amount // overrides the estimate when set
}

var (
	minimumPaymentFloor = generic.NewAmountFromInt(25)
	onePercent          = decimal.NewFromFloat(0.01)
	monthsPerYear       = decimal.NewFromInt(12)
	hundred             = decimal.NewFromInt(100)
)

// EstimatedPayment is the flat monthly payment projected for a card with the
// given outstanding balance: the configured minimum if any, otherwise
// max($25, 1% of balance + one month of interest), never more than the balance.
func (t CreditCardTerms) EstimatedPayment(balance generic.Amount) generic.Amount {
	if !balance.IsPositive() {
		return generic.Zero
	}
	if t.MinimumPayment != nil && t.MinimumPayment.IsPositive() {
		return t.MinimumPayment.Min(balance).Round(2)
	}
	interest := balance.Mul(t.APR.Div(hundred).Div(monthsPerYear))
	payment := balance.Mul(onePercent).Add(interest).Max(minimumPaymentFloor)
	return payment.Min(balance).Round(2)
}

// PaymentEligible reports whether the card should produce payment occurrences.
func (a Account) PaymentEligible() bool {
	if a.CreditCard == nil || a.CurrentBalance == nil {
		return false
	}
	due := a.CreditCard.PaymentDueDay
	return due >= 1 && due <= 28 && a.CurrentBalance.IsPositive()
}

// =============================================================================
// EVENT SOURCES - Income, bills, transfers
// =============================================================================

// EventSource is the part shared by every recurring or one-time event.
type EventSource struct {
	ID        string
	Name      string
	Amount    generic.Amount
	Frequency generic.Frequency
	Active    *bool // nil means active

	// Anchor is the first/reference occurrence: next pay date for income,
	// due date for bills, transfer date for transfers.
	Anchor  generic.Date
	EndDate *generic.Date
}

// IsActive reports whether the source participates in the forecast.
func (s EventSource) IsActive() bool {
	return s.Active == nil || *s.Active
}

// Schedule returns the recurrence rule of the source.
func (s EventSource) Schedule() generic.Schedule {
	return generic.Schedule{Frequency: s.Frequency, Anchor: s.Anchor, End: s.EndDate}
}

// IncomeSource is money coming in.
type IncomeSource struct {
	EventSource
	Status    string // e.g. "pending" for income tied to an unpaid invoice
	InvoiceID string
}

// Bill is money going out.
type Bill struct {
	EventSource
	Category string
}

// Transfer moves money between two of the user's accounts.
type Transfer struct {
	EventSource
	FromAccountID string
	ToAccountID   string
}

// =============================================================================
// OCCURRENCE - One dated instance of an event
// =============================================================================

// Kind tells income, bills and transfers apart.
type Kind string

const (
	KindIncome   Kind = "income"
	KindBill     Kind = "bill"
	KindTransfer Kind = "transfer"
	KindAccount  Kind = "account"
)

// Occurrence is a single concrete dated instance of an event source.
type Occurrence struct {
	Date      generic.Date
	SourceID  string
	Name      string
	Amount    generic.Amount
	Kind      Kind
	Frequency generic.Frequency
	Status    string
	InvoiceID string

	// Transfer legs, empty for other kinds.
	FromAccountID string
	ToAccountID   string
}

// =============================================================================
// SNAPSHOT - Everything the store hands to the engine
// =============================================================================

// Snapshot is the pre-loaded state of one user.
type Snapshot struct {
	Accounts  []Account
	Income    []IncomeSource
	Bills     []Bill
	Transfers []Transfer
}

// CreditCards returns the accounts carrying credit-card terms.
func (s Snapshot) CreditCards() []Account {
	var cards []Account
	for _, a := range s.Accounts {
		if a.CreditCard != nil {
			cards = append(cards, a)
		}
	}
	return cards
}

// BankAccounts returns the accounts without credit-card terms.
func (s Snapshot) BankAccounts() []Account {
	var accounts []Account
	for _, a := range s.Accounts {
		if a.CreditCard == nil {
			accounts = append(accounts, a)
		}
	}
	return accounts
}

// Input builds a ForecastInput from the snapshot. Credit cards are routed to
// CreditCards and never count toward the starting balance.
func (s Snapshot) Input(today generic.Date, horizonDays int, safetyBuffer generic.Amount) ForecastInput {
	return ForecastInput{
		Accounts:     s.BankAccounts(),
		Income:       s.Income,
		Bills:        s.Bills,
		Transfers:    s.Transfers,
		CreditCards:  s.CreditCards(),
		HorizonDays:  horizonDays,
		SafetyBuffer: safetyBuffer,
		Today:        today,
	}
}

// Bool returns a pointer to b, for the optional flags above.
func Bool(b bool) *bool { return &b }
