/*
Package factory converts stored records into engine inputs.

PURPOSE:
  Records arrive as JSON (API, demo files) or database rows with string dates,
  float amounts and optional flags. The factory turns them into cashflow
  types, normalizing every date to local noon and converting anything it
  cannot use into a data-quality warning instead of an error.

JSON SCHEMA:
  {
    "accounts": [
      {"id": "chk", "user_id": "u1", "name": "Checking", "type": "checking",
       "current_balance": 1250.40, "include_in_spendable": true},
      {"id": "visa", "user_id": "u1", "name": "Visa", "type": "credit_card",
       "current_balance": 830, "credit_limit": 5000, "apr": 24.99,
       "payment_due_day": 12}
    ],
    "income": [
      {"id": "pay", "user_id": "u1", "name": "Salary", "amount": 2400,
       "frequency": "biweekly", "next_pay_date": "2025-03-07"}
    ],
    "bills": [
      {"id": "rent", "user_id": "u1", "name": "Rent", "amount": 1500,
       "frequency": "monthly", "due_date": "2025-03-01", "category": "housing"}
    ],
    "transfers": [
      {"id": "save", "user_id": "u1", "name": "Savings sweep", "amount": 200,
       "frequency": "monthly", "transfer_date": "2025-03-15",
       "from_account_id": "chk", "to_account_id": "sav"}
    ]
  }

CONVERSION RULES:
  - Unparseable date: source kept with a zero anchor (expands to nothing) + warning
  - Non-finite or missing amount: source dropped + warning
  - Unknown frequency: kept as FreqUnknown; the engine warns about it
  - Missing is_active / include_in_spendable: left nil (treated as true)

SEE ALSO:
  - cashflow/types.go: Target types
  - store/: Where records are persisted
*/
package factory

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// AccountTypeCreditCard marks credit-card accounts.
const AccountTypeCreditCard = "credit_card"

// AccountRecord is a stored bank or credit-card account. For credit cards
// CurrentBalance is the amount owed.
type AccountRecord struct {
	ID                 string   `json:"id"`
	UserID             string   `json:"user_id"`
	Name               string   `json:"name"`
	Type               string   `json:"type,omitempty"` // checking, savings, credit_card
	CurrentBalance     *float64 `json:"current_balance"`
	IncludeInSpendable *bool    `json:"include_in_spendable,omitempty"`

	CreditLimit       *float64 `json:"credit_limit,omitempty"`
	APR               *float64 `json:"apr,omitempty"`
	PaymentDueDay     *int     `json:"payment_due_day,omitempty"`
	StatementCloseDay *int     `json:"statement_close_day,omitempty"`
	MinimumPayment    *float64 `json:"minimum_payment,omitempty"`
}

// IsCreditCard reports whether the record describes a credit card.
func (r AccountRecord) IsCreditCard() bool {
	return r.Type == AccountTypeCreditCard || r.PaymentDueDay != nil || r.CreditLimit != nil
}

// IncomeRecord is a stored income source.
type IncomeRecord struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Amount      *float64 `json:"amount"`
	Frequency   string   `json:"frequency"`
	NextPayDate string   `json:"next_pay_date"`
	EndDate     string   `json:"end_date,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	Status      string   `json:"status,omitempty"`
	InvoiceID   string   `json:"invoice_id,omitempty"`
}

// BillRecord is a stored bill.
type BillRecord struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Name      string   `json:"name"`
	Amount    *float64 `json:"amount"`
	Frequency string   `json:"frequency"`
	DueDate   string   `json:"due_date"`
	EndDate   string   `json:"end_date,omitempty"`
	IsActive  *bool    `json:"is_active,omitempty"`
	Category  string   `json:"category,omitempty"`
}

// TransferRecord is a stored transfer between two accounts.
type TransferRecord struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	Name          string   `json:"name"`
	Amount        *float64 `json:"amount"`
	Frequency     string   `json:"frequency"`
	TransferDate  string   `json:"transfer_date"`
	EndDate       string   `json:"end_date,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
	FromAccountID string   `json:"from_account_id"`
	ToAccountID   string   `json:"to_account_id"`
}

// Key returns the owning user and the record ID.
func (r AccountRecord) Key() (userID, id string) { return r.UserID, r.ID }

// Key returns the owning user and the record ID.
func (r IncomeRecord) Key() (userID, id string) { return r.UserID, r.ID }

// Key returns the owning user and the record ID.
func (r BillRecord) Key() (userID, id string) { return r.UserID, r.ID }

// Key returns the owning user and the record ID.
func (r TransferRecord) Key() (userID, id string) { return r.UserID, r.ID }

// Records is everything stored for one user.
type Records struct {
	Accounts  []AccountRecord  `json:"accounts"`
	Income    []IncomeRecord   `json:"income"`
	Bills     []BillRecord     `json:"bills"`
	Transfers []TransferRecord `json:"transfers"`
}

// IsEmpty is true when no record of any kind is present.
func (r Records) IsEmpty() bool {
	return len(r.Accounts) == 0 && len(r.Income) == 0 && len(r.Bills) == 0 && len(r.Transfers) == 0
}

// ParseRecords decodes a JSON document in the schema above.
func ParseRecords(data []byte) (Records, error) {
	var r Records
	if err := json.Unmarshal(data, &r); err != nil {
		return Records{}, fmt.Errorf("failed to parse records JSON: %w", err)
	}
	return r, nil
}

// Float returns a pointer to v, for the optional record fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
