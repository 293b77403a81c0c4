package factory

import (
	"fmt"

	"github.com/warp/cashflow-engine/generic"
)

// =============================================================================
// DEMO HOUSEHOLDS
// =============================================================================
//
// Pre-built households for demos and manual testing. Dates are relative to
// the supplied "today" so every demo always has something upcoming.

// DemoHousehold describes a loadable demo.
type DemoHousehold struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var demoHouseholds = []DemoHousehold{
	{
		ID:          "steady-salary",
		Name:        "Steady Salary",
		Description: "Biweekly paycheck, rent and a handful of monthly bills; comfortably green",
	},
	{
		ID:          "month-end-crunch",
		Name:        "Month-End Crunch",
		Description: "Bills clustered on the 1st and the last day of the month; critical collisions",
	},
	{
		ID:          "freelancer",
		Name:        "Freelancer",
		Description: "Pending invoices instead of a paycheck; balance dips below the buffer",
	},
	{
		ID:          "credit-cards",
		Name:        "Credit Cards",
		Description: "Two cards with projected monthly payments and a savings sweep",
	},
}

// DemoHouseholds lists the available demos.
func DemoHouseholds() []DemoHousehold {
	out := make([]DemoHousehold, len(demoHouseholds))
	copy(out, demoHouseholds)
	return out
}

// DemoRecords builds the records of demo id for userID.
func DemoRecords(id, userID string, today generic.Date) (Records, error) {
	g := demoGen{user: userID, today: today}
	switch id {
	case "steady-salary":
		return g.steadySalary(), nil
	case "month-end-crunch":
		return g.monthEndCrunch(), nil
	case "freelancer":
		return g.freelancer(), nil
	case "credit-cards":
		return g.creditCards(), nil
	default:
		return Records{}, fmt.Errorf("unknown demo household: %s", id)
	}
}

type demoGen struct {
	user  string
	today generic.Date
}

func (g demoGen) id(s string) string { return g.user + "-" + s }

// offset formats today+n.
func (g demoGen) offset(n int) string { return g.today.AddDays(n).String() }

// dayOfMonth formats the next date (today or later) falling on day.
func (g demoGen) dayOfMonth(day int) string {
	d := generic.ClampedDateIn(g.today.Year(), g.today.Month(), day, g.today.Location())
	if d.Before(g.today) {
		d = generic.ClampedDateIn(g.today.Year(), g.today.Month()+1, day, g.today.Location())
	}
	return d.String()
}

func (g demoGen) account(id, name, typ string, bal float64, spendable bool) AccountRecord {
	return AccountRecord{
		ID: g.id(id), UserID: g.user, Name: name, Type: typ,
		CurrentBalance: Float(bal), IncludeInSpendable: &spendable,
	}
}

func (g demoGen) bill(id, name string, amount float64, freq, due, category string) BillRecord {
	return BillRecord{
		ID: g.id(id), UserID: g.user, Name: name, Amount: Float(amount),
		Frequency: freq, DueDate: due, Category: category,
	}
}

func (g demoGen) income(id, name string, amount float64, freq, next string) IncomeRecord {
	return IncomeRecord{
		ID: g.id(id), UserID: g.user, Name: name, Amount: Float(amount),
		Frequency: freq, NextPayDate: next,
	}
}

func (g demoGen) steadySalary() Records {
	return Records{
		Accounts: []AccountRecord{
			g.account("checking", "Everyday Checking", "checking", 2400, true),
			g.account("savings", "Rainy Day Savings", "savings", 8000, false),
		},
		Income: []IncomeRecord{
			g.income("salary", "Salary", 2600, "biweekly", g.offset(3)),
		},
		Bills: []BillRecord{
			g.bill("rent", "Rent", 1650, "monthly", g.dayOfMonth(1), "housing"),
			g.bill("utilities", "Electric & Gas", 140, "monthly", g.dayOfMonth(15), "utilities"),
			g.bill("phone", "Phone", 85, "monthly", g.dayOfMonth(22), "utilities"),
			g.bill("streaming", "Streaming", 18.99, "monthly", g.dayOfMonth(9), "entertainment"),
			g.bill("insurance", "Car Insurance", 540, "quarterly", g.dayOfMonth(28), "insurance"),
		},
	}
}

func (g demoGen) monthEndCrunch() Records {
	return Records{
		Accounts: []AccountRecord{
			g.account("checking", "Checking", "checking", 3100, true),
		},
		Income: []IncomeRecord{
			g.income("salary", "Salary", 2050, "semi_monthly", g.dayOfMonth(15)),
		},
		Bills: []BillRecord{
			g.bill("rent", "Rent", 1400, "monthly", g.dayOfMonth(1), "housing"),
			g.bill("car", "Car Loan", 389, "monthly", g.dayOfMonth(1), "transport"),
			g.bill("student-loan", "Student Loan", 260, "monthly", g.dayOfMonth(1), "debt"),
			g.bill("gym", "Gym", 45, "monthly", g.dayOfMonth(1), "health"),
			g.bill("internet", "Internet", 70, "monthly", g.dayOfMonth(31), "utilities"),
			g.bill("storage", "Storage Unit", 120, "monthly", g.dayOfMonth(31), "housing"),
			g.bill("gym-old", "Old Gym Membership", 0, "monthly", g.dayOfMonth(31), "health"),
		},
	}
}

func (g demoGen) freelancer() Records {
	inactive := false
	rec := Records{
		Accounts: []AccountRecord{
			g.account("checking", "Business Checking", "checking", 1800, true),
			g.account("tax", "Tax Reserve", "savings", 4200, false),
		},
		Income: []IncomeRecord{
			{
				ID: g.id("invoice-1042"), UserID: g.user, Name: "Invoice #1042", Amount: Float(3200),
				Frequency: "one_time", NextPayDate: g.offset(12), Status: "pending", InvoiceID: "1042",
			},
			{
				ID: g.id("invoice-1043"), UserID: g.user, Name: "Invoice #1043", Amount: Float(1450),
				Frequency: "one_time", NextPayDate: g.offset(33), Status: "pending", InvoiceID: "1043",
			},
			{
				ID: g.id("retainer"), UserID: g.user, Name: "Old Retainer", Amount: Float(900),
				Frequency: "monthly", NextPayDate: g.offset(5), IsActive: &inactive,
			},
			g.income("royalties", "Royalties", 130, "irregular", g.offset(20)),
		},
		Bills: []BillRecord{
			g.bill("rent", "Studio Rent", 1250, "monthly", g.dayOfMonth(5), "housing"),
			g.bill("software", "Software Subscriptions", 96, "monthly", g.dayOfMonth(5), "business"),
			g.bill("coworking", "Coworking Pass", 75, "weekly", g.offset(2), "business"),
			g.bill("estimated-tax", "Estimated Tax", 1100, "quarterly", g.offset(40), "tax"),
		},
	}
	return rec
}

func (g demoGen) creditCards() Records {
	visa := g.account("visa", "Visa Rewards", AccountTypeCreditCard, 1840, false)
	visa.CreditLimit = Float(6000)
	visa.APR = Float(23.99)
	visa.PaymentDueDay = Int(12)

	store := g.account("store-card", "Store Card", AccountTypeCreditCard, 310, false)
	store.CreditLimit = Float(1000)
	store.APR = Float(29.99)
	store.PaymentDueDay = Int(25)
	store.MinimumPayment = Float(40)

	return Records{
		Accounts: []AccountRecord{
			g.account("checking", "Checking", "checking", 2750, true),
			g.account("savings", "Savings", "savings", 3000, false),
			visa,
			store,
		},
		Income: []IncomeRecord{
			g.income("salary", "Salary", 2300, "biweekly", g.offset(6)),
		},
		Bills: []BillRecord{
			g.bill("rent", "Rent", 1350, "monthly", g.dayOfMonth(1), "housing"),
			g.bill("utilities", "Utilities", 160, "monthly", g.dayOfMonth(18), "utilities"),
		},
		Transfers: []TransferRecord{
			{
				ID: g.id("sweep"), UserID: g.user, Name: "Savings Sweep", Amount: Float(250),
				Frequency: "monthly", TransferDate: g.dayOfMonth(20),
				FromAccountID: g.id("checking"), ToAccountID: g.id("savings"),
			},
		},
	}
}
