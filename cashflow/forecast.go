/*
forecast.go - Day-by-day balance projection

PURPOSE:
  The Generator is the orchestrator of the engine. It turns a snapshot of
  accounts and event sources into CalendarData: one CalendarDay per calendar
  day of the horizon, each with its running balance and status.

ALGORITHM:
  1. Starting balance = sum of spendable account balances
  2. Date axis = HorizonDays consecutive days starting at Today (day 0)
  3. Expand every income, bill, transfer and eligible card payment
  4. Per day: sum income and bills, balance[i] = balance[i-1] + in - out
  5. Classify each day against the safety buffer
  6. Track the lowest balance (earliest day on ties)
  7. Safe to spend = min(balance over the near-term window) - buffer
  8. Detect bill collisions

TRANSFERS:
  Transfers are attached to their days but leave the balance alone unless
  NetTransfers is set. With netting on, a transfer whose legs both resolve to
  known accounts moves money into or out of the spendable pool when exactly
  one leg is spendable. Netting is off by default so that the balance always
  equals previous balance + income - bills.

ORDER INDEPENDENCE:
  Occurrences are bucketed per day and summed before accumulation, so the
  result does not depend on the order sources are processed in. Parallel
  expansion writes into per-source slots and is merged in input order.

SEE ALSO:
  - expand.go: Per-kind expanders
  - status.go: Classify
  - collision.go: DetectCollisions
*/
package cashflow

import (
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/warp/cashflow-engine/generic"
)

// DefaultSafeToSpendWindow is the near-term window, in days, that bounds
// the safe-to-spend figure.
const DefaultSafeToSpendWindow = 14

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// ForecastInput contains all inputs of one forecast.
type ForecastInput struct {
	Accounts    []Account
	Income      []IncomeSource
	Bills       []Bill
	Transfers   []Transfer
	CreditCards []Account

	HorizonDays  int
	SafetyBuffer generic.Amount

	// Today is day 0. It is never read from the clock.
	Today generic.Date

	// SafeToSpendWindow defaults to DefaultSafeToSpendWindow.
	SafeToSpendWindow int

	Collisions CollisionThresholds

	NetTransfers bool
}

// CalendarDay is one day of the projection.
type CalendarDay struct {
	Date      generic.Date
	Balance   generic.Amount
	Income    []Occurrence
	Bills     []Occurrence
	Transfers []Occurrence

	// TransferNet is the effect of the day's transfers on the spendable pool.
	// It is only folded into Balance when netting is enabled.
	TransferNet generic.Amount

	Status Status
}

// TotalIncome sums the day's income.
func (d CalendarDay) TotalIncome() generic.Amount { return sumOccurrences(d.Income) }

// TotalBills sums the day's bills.
func (d CalendarDay) TotalBills() generic.Amount { return sumOccurrences(d.Bills) }

func sumOccurrences(occs []Occurrence) generic.Amount {
	total := generic.Zero
	for _, o := range occs {
		total = total.Add(o.Amount)
	}
	return total
}

// CalendarData is a finished forecast.
type CalendarData struct {
	Days            []CalendarDay // chronological, one per day, no gaps
	StartingBalance generic.Amount
	SafetyBuffer    generic.Amount

	LowestBalance    generic.Amount
	LowestBalanceDay generic.Date

	// SafeToSpend is floored at zero for display; SafeToSpendRaw keeps the sign.
	SafeToSpend    generic.Amount
	SafeToSpendRaw generic.Amount

	Collisions CollisionSummary
	Warnings   []Warning
}

// Period returns the date range covered by the forecast.
func (c *CalendarData) Period() generic.Period {
	if len(c.Days) == 0 {
		return generic.Period{}
	}
	return generic.Period{Start: c.Days[0].Date, End: c.Days[len(c.Days)-1].Date}
}

// DayIndex returns the index of d in Days, or -1.
func (c *CalendarData) DayIndex(d generic.Date) int {
	if len(c.Days) == 0 {
		return -1
	}
	i := generic.DaysBetween(c.Days[0].Date, d)
	if i < 0 || i >= len(c.Days) {
		return -1
	}
	return i
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator computes forecasts. The zero value is ready to use and silent.
type Generator struct {
	// Logger receives day-by-day trace output and data-quality warnings.
	Logger logrus.FieldLogger

	// Parallel fans expansion out across source kinds.
	Parallel bool
}

func (g *Generator) logger() logrus.FieldLogger {
	if g == nil || g.Logger == nil {
		return discardLogger
	}
	return g.Logger
}

// GenerateForecast runs a forecast with a silent default Generator.
func GenerateForecast(
	accounts []Account,
	income []IncomeSource,
	bills []Bill,
	transfers []Transfer,
	creditCards []Account,
	horizonDays int,
	safetyBuffer generic.Amount,
	today generic.Date,
) (*CalendarData, error) {
	var g Generator
	return g.Generate(ForecastInput{
		Accounts:     accounts,
		Income:       income,
		Bills:        bills,
		Transfers:    transfers,
		CreditCards:  creditCards,
		HorizonDays:  horizonDays,
		SafetyBuffer: safetyBuffer,
		Today:        today,
	})
}

// Generate projects the balance for every day of the horizon.
func (g *Generator) Generate(in ForecastInput) (*CalendarData, error) {
	log := g.logger()

	if in.Today.IsZero() {
		return nil, generic.ErrMissingToday
	}
	if in.HorizonDays < 1 {
		return nil, &generic.ConfigError{Field: "horizon", Value: strconv.Itoa(in.HorizonDays), Err: generic.ErrInvalidHorizon}
	}
	if err := ValidateSafetyBuffer(in.SafetyBuffer); err != nil {
		return nil, err
	}

	// 1. Starting balance
	starting, warnings, err := startingBalance(in.Accounts)
	if err != nil {
		return nil, err
	}

	// 2. Date axis
	horizon := generic.Horizon(in.Today, in.HorizonDays)

	// 3. Expansion
	occ := g.expandAll(in, horizon)
	warnings = append(warnings, occ.warnings...)
	for _, w := range warnings {
		log.WithFields(logrus.Fields{
			"source_id": w.SourceID,
			"kind":      w.Kind,
			"code":      w.Code,
		}).Warn(w.Message)
	}

	// 4. Bucket per day
	days := make([]CalendarDay, in.HorizonDays)
	for i := range days {
		days[i].Date = in.Today.AddDays(i)
	}
	place := func(o Occurrence) int {
		i := generic.DaysBetween(in.Today, o.Date)
		if i < 0 || i >= len(days) {
			return -1
		}
		return i
	}
	for _, o := range occ.income {
		if i := place(o); i >= 0 {
			days[i].Income = append(days[i].Income, o)
		}
	}
	for _, o := range occ.bills {
		if i := place(o); i >= 0 {
			days[i].Bills = append(days[i].Bills, o)
		}
	}
	spendable := spendableIndex(in.Accounts, in.CreditCards)
	for _, o := range occ.transfers {
		if i := place(o); i >= 0 {
			days[i].Transfers = append(days[i].Transfers, o)
			days[i].TransferNet = days[i].TransferNet.Add(transferEffect(o, spendable))
		}
	}

	// 5-6. Accumulate, classify, track minimum
	result := &CalendarData{
		StartingBalance: starting,
		SafetyBuffer:    in.SafetyBuffer,
		Warnings:        warnings,
	}
	balance := starting
	for i := range days {
		day := &days[i]
		balance = balance.Add(day.TotalIncome()).Sub(day.TotalBills())
		if in.NetTransfers {
			balance = balance.Add(day.TransferNet)
		}
		day.Balance = balance
		day.Status = Classify(balance, in.SafetyBuffer)

		if i == 0 || balance.LessThan(result.LowestBalance) {
			result.LowestBalance = balance
			result.LowestBalanceDay = day.Date
		}

		log.WithFields(logrus.Fields{
			"date":    day.Date.String(),
			"income":  len(day.Income),
			"bills":   len(day.Bills),
			"balance": balance.String(),
			"status":  day.Status,
		}).Trace("forecast day")
	}
	result.Days = days

	// 7. Safe to spend
	result.SafeToSpendRaw = safeToSpend(days, in.SafeToSpendWindow, in.SafetyBuffer)
	result.SafeToSpend = result.SafeToSpendRaw.Max(generic.Zero)

	// 8. Collisions
	result.Collisions = DetectCollisions(days, in.Collisions)

	log.WithFields(logrus.Fields{
		"days":          len(days),
		"starting":      starting.String(),
		"lowest":        result.LowestBalance.String(),
		"lowest_day":    result.LowestBalanceDay.String(),
		"safe_to_spend": result.SafeToSpend.String(),
		"collisions":    result.Collisions.TotalCollisions,
		"warnings":      len(warnings),
	}).Debug("forecast generated")

	return result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// startingBalance sums the spendable accounts. Spendable accounts without a
// usable balance are skipped with a warning; if every spendable account is
// unusable (or there are no accounts at all) there is no starting balance.
func startingBalance(accounts []Account) (generic.Amount, []Warning, error) {
	total := generic.Zero
	var warnings []Warning
	var skipped []string
	spendable, usable := 0, 0
	for _, a := range accounts {
		if !a.Spendable() {
			continue
		}
		spendable++
		if a.CurrentBalance == nil {
			skipped = append(skipped, a.ID)
			warnings = append(warnings, Warning{
				SourceID: a.ID, Kind: KindAccount, Code: WarnMissingBalance,
				Message: "account has no usable balance; excluded from starting balance",
			})
			continue
		}
		usable++
		total = total.Add(*a.CurrentBalance)
	}
	if spendable > 0 && usable == 0 {
		return generic.Zero, warnings, &generic.StartingBalanceError{Accounts: len(accounts), Skipped: skipped}
	}
	return total, warnings, nil
}

func safeToSpend(days []CalendarDay, window int, buffer generic.Amount) generic.Amount {
	if window <= 0 {
		window = DefaultSafeToSpendWindow
	}
	if window > len(days) {
		window = len(days)
	}
	lowest := days[0].Balance
	for _, d := range days[1:window] {
		lowest = lowest.Min(d.Balance)
	}
	return lowest.Sub(buffer)
}

// spendableIndex maps known account ids to their spendable flag. Credit
// cards are never spendable.
func spendableIndex(accounts, cards []Account) map[string]bool {
	idx := make(map[string]bool, len(accounts)+len(cards))
	for _, c := range cards {
		idx[c.ID] = false
	}
	for _, a := range accounts {
		idx[a.ID] = a.Spendable()
	}
	return idx
}

// transferEffect is the change to the spendable pool caused by o. Both legs
// must be known accounts; otherwise the transfer is treated as internal.
func transferEffect(o Occurrence, spendable map[string]bool) generic.Amount {
	from, fromKnown := spendable[o.FromAccountID]
	to, toKnown := spendable[o.ToAccountID]
	if !fromKnown || !toKnown || from == to {
		return generic.Zero
	}
	if from {
		return o.Amount.Neg()
	}
	return o.Amount
}

type expansion struct {
	income    []Occurrence
	bills     []Occurrence
	transfers []Occurrence
	warnings  []Warning
}

func (g *Generator) expandAll(in ForecastInput, r generic.Period) expansion {
	incomeSlots := make([][]Occurrence, len(in.Income))
	billSlots := make([][]Occurrence, len(in.Bills)+len(in.CreditCards))
	transferSlots := make([][]Occurrence, len(in.Transfers))

	jobs := []func(){
		func() {
			for i, src := range in.Income {
				incomeSlots[i] = ExpandIncome(src, r)
			}
		},
		func() {
			for i, src := range in.Bills {
				billSlots[i] = ExpandBill(src, r)
			}
			for i, card := range in.CreditCards {
				billSlots[len(in.Bills)+i] = ExpandCreditCardPayment(card, r)
			}
		},
		func() {
			for i, src := range in.Transfers {
				transferSlots[i] = ExpandTransfer(src, r)
			}
		},
	}

	if g != nil && g.Parallel {
		var wg sync.WaitGroup
		for _, job := range jobs {
			wg.Add(1)
			go func(job func()) {
				defer wg.Done()
				job()
			}(job)
		}
		wg.Wait()
	} else {
		for _, job := range jobs {
			job()
		}
	}

	var out expansion
	for _, s := range incomeSlots {
		out.income = append(out.income, s...)
	}
	for _, s := range billSlots {
		out.bills = append(out.bills, s...)
	}
	for _, s := range transferSlots {
		out.transfers = append(out.transfers, s...)
	}

	for _, src := range in.Income {
		out.warnings = append(out.warnings, sourceWarnings(KindIncome, src.EventSource)...)
	}
	for _, src := range in.Bills {
		out.warnings = append(out.warnings, sourceWarnings(KindBill, src.EventSource)...)
	}
	for _, src := range in.Transfers {
		out.warnings = append(out.warnings, sourceWarnings(KindTransfer, src.EventSource)...)
	}
	for _, card := range in.CreditCards {
		if card.CreditCard == nil || card.PaymentEligible() {
			continue
		}
		if due := card.CreditCard.PaymentDueDay; due < 1 || due > 28 {
			out.warnings = append(out.warnings, Warning{
				SourceID: card.ID, Kind: KindAccount, Code: WarnCardNotPayable,
				Message: "payment due day " + strconv.Itoa(due) + " is outside 1-28; no payments projected",
			})
		}
	}
	return out
}
