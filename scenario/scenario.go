/*
Package scenario answers "can I afford this?" on top of a finished forecast.

PURPOSE:
  Overlay takes a CalendarData and one hypothetical expense (one-time or
  monthly) and recomputes what the balance would be, without touching the
  baseline forecast.

PROCESS:
  1. Validate the expense (user input: a bad amount is a verdict, not an error)
  2. Expand its dates over the forecast range with generic.Schedule, the same
     rule used for monthly bills (Jan 31 -> Feb 28 -> Mar 31)
  3. Accumulate the extra deductions as a running offset
  4. scenario[i] = baseline[i] - cumulativeExtra[i]
  5. Find the scenario's lowest day and its first problem day
  6. Build a short baseline-vs-scenario preview around the problem day
     (or the lowest day when there is no problem)

AFFORDABILITY:
  The expense is affordable when no scenario day drops below zero and no
  scenario day drops below the low-balance threshold (the forecast's safety
  buffer unless overridden).

EXAMPLE:
  forecast, _ := gen.Generate(input)
  result, preview := scenario.ComputeScenario(forecast, scenario.Expense{
      Name:      "New laptop",
      Amount:    1299,
      Date:      generic.NewDate(2025, time.March, 3),
      Frequency: generic.FreqOneTime,
  })
  if !result.CanAfford {
      fmt.Println(result.Reason)
  }
*/
package scenario

import (
	"fmt"
	"math"

	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/generic"
)

// DefaultPreviewDays is the size of the preview window.
const DefaultPreviewDays = 7

// Expense is a hypothetical expense as entered by the user.
type Expense struct {
	Name string

	// Amount comes straight from the form. NaN, ±Inf and values <= 0 are
	// reported as "cannot evaluate".
	Amount float64

	// Date of the (first) occurrence. Zero means the forecast's first day.
	Date generic.Date

	// Frequency is FreqOneTime (default when empty) or FreqMonthly.
	Frequency generic.Frequency
}

// Result is the verdict of an overlay.
type Result struct {
	// Evaluated is false when the expense itself was invalid.
	Evaluated bool
	CanAfford bool
	Reason    string

	LowestBalance    generic.Amount
	LowestBalanceDay generic.Date
	BaselineLowest   generic.Amount

	CausesOverdraft  bool
	CausesLowBalance bool

	// FirstProblemDay is the first day below zero or below the threshold.
	FirstProblemDay *generic.Date

	TotalExtra   generic.Amount
	ExpenseDates []generic.Date
}

// PreviewDay compares the baseline and scenario balance of one day.
type PreviewDay struct {
	Date     generic.Date
	Baseline generic.Amount
	Scenario generic.Amount
	Extra    generic.Amount // deducted on this day
	Status   cashflow.Status
}

// Preview is a bounded window of PreviewDays around the day of interest.
type Preview struct {
	Center generic.Date
	Days   []PreviewDay
}

// Engine evaluates scenarios. The zero value uses the forecast's safety
// buffer as the low-balance threshold and a 7-day preview.
type Engine struct {
	LowBalanceThreshold *generic.Amount
	PreviewDays         int
}

// ComputeScenario overlays exp on forecast with a default Engine.
func ComputeScenario(forecast *cashflow.CalendarData, exp Expense) (Result, Preview) {
	return Engine{}.Overlay(forecast, exp)
}

// Overlay computes the scenario. forecast is only read.
func (e Engine) Overlay(forecast *cashflow.CalendarData, exp Expense) (Result, Preview) {
	if forecast == nil || len(forecast.Days) == 0 {
		return rejected("there is no forecast to compare against"), Preview{}
	}
	amount, reason := validate(exp)
	if reason != "" {
		return rejected(reason), Preview{}
	}

	frequency := exp.Frequency
	if frequency == "" {
		frequency = generic.FreqOneTime
	}
	anchor := exp.Date
	if anchor.IsZero() {
		anchor = forecast.Days[0].Date
	}

	days := forecast.Days
	dates := generic.Schedule{Frequency: frequency, Anchor: anchor}.Expand(forecast.Period())

	extra := make([]generic.Amount, len(days))
	for _, d := range dates {
		if i := forecast.DayIndex(d); i >= 0 {
			extra[i] = extra[i].Add(amount)
		}
	}

	threshold := forecast.SafetyBuffer
	if e.LowBalanceThreshold != nil {
		threshold = *e.LowBalanceThreshold
	}

	scenarioBalances := make([]generic.Amount, len(days))
	cumulative := generic.Zero
	result := Result{
		Evaluated:    true,
		ExpenseDates: dates,
	}
	firstProblem := -1
	lowestIdx := 0
	for i, day := range days {
		cumulative = cumulative.Add(extra[i])
		bal := day.Balance.Sub(cumulative)
		scenarioBalances[i] = bal

		if i == 0 || bal.LessThan(scenarioBalances[lowestIdx]) {
			lowestIdx = i
		}
		if i == 0 || day.Balance.LessThan(result.BaselineLowest) {
			result.BaselineLowest = day.Balance
		}
		if firstProblem < 0 && (bal.IsNegative() || bal.LessThan(threshold)) {
			firstProblem = i
		}
	}

	result.TotalExtra = cumulative
	result.LowestBalance = scenarioBalances[lowestIdx]
	result.LowestBalanceDay = days[lowestIdx].Date
	result.CausesOverdraft = result.LowestBalance.IsNegative()
	result.CausesLowBalance = result.LowestBalance.LessThan(threshold)
	result.CanAfford = !result.CausesOverdraft && !result.CausesLowBalance

	center := lowestIdx
	if firstProblem >= 0 {
		problemDay := days[firstProblem].Date
		result.FirstProblemDay = &problemDay
		center = firstProblem
	}
	result.Reason = explain(result, threshold, len(dates))

	return result, e.preview(days, scenarioBalances, extra, center, forecast.SafetyBuffer)
}

func (e Engine) preview(
	days []cashflow.CalendarDay,
	balances, extra []generic.Amount,
	center int,
	buffer generic.Amount,
) Preview {
	size := e.PreviewDays
	if size <= 0 {
		size = DefaultPreviewDays
	}
	start := center - size/2
	if start < 0 {
		start = 0
	}
	end := start + size
	if end > len(days) {
		end = len(days)
		start = end - size
		if start < 0 {
			start = 0
		}
	}

	p := Preview{Center: days[center].Date, Days: make([]PreviewDay, 0, end-start)}
	for i := start; i < end; i++ {
		status := cashflow.StatusRed
		if buffer.IsPositive() {
			status = cashflow.Classify(balances[i], buffer)
		}
		p.Days = append(p.Days, PreviewDay{
			Date:     days[i].Date,
			Baseline: days[i].Balance,
			Scenario: balances[i],
			Extra:    extra[i],
			Status:   status,
		})
	}
	return p
}

// validate returns the expense amount rounded to cents, or the reason it
// cannot be evaluated.
func validate(exp Expense) (generic.Amount, string) {
	if math.IsNaN(exp.Amount) || math.IsInf(exp.Amount, 0) {
		return generic.Zero, "amount must be a finite number"
	}
	if exp.Amount <= 0 {
		return generic.Zero, "amount must be greater than zero"
	}
	amount, err := generic.AmountFromFloat(exp.Amount)
	if err != nil {
		return generic.Zero, "amount must be a finite number"
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return generic.Zero, "amount must be at least $0.01"
	}

	switch exp.Frequency {
	case "", generic.FreqOneTime, generic.FreqMonthly:
		return amount, ""
	default:
		return generic.Zero, fmt.Sprintf("frequency %q is not supported; use one_time or monthly", string(exp.Frequency))
	}
}

func rejected(reason string) Result {
	return Result{Evaluated: false, CanAfford: false, Reason: reason}
}

func explain(r Result, threshold generic.Amount, occurrences int) string {
	if occurrences == 0 {
		// Nothing was added, so any problem is already in the baseline.
		switch {
		case r.CausesOverdraft:
			return fmt.Sprintf("the expense falls outside the forecast horizon, but the balance already drops to $%s on %s",
				r.LowestBalance, r.LowestBalanceDay)
		case r.CausesLowBalance:
			return fmt.Sprintf("the expense falls outside the forecast horizon, but the balance is already below $%s starting %s",
				threshold, r.FirstProblemDay)
		default:
			return "the expense falls outside the forecast horizon"
		}
	}
	switch {
	case r.CausesOverdraft:
		return fmt.Sprintf("balance would drop to $%s on %s, overdrawing the account", r.LowestBalance, r.LowestBalanceDay)
	case r.CausesLowBalance:
		return fmt.Sprintf("balance would fall below $%s starting %s (lowest $%s on %s)",
			threshold, r.FirstProblemDay, r.LowestBalance, r.LowestBalanceDay)
	default:
		return fmt.Sprintf("affordable: lowest balance would be $%s on %s", r.LowestBalance, r.LowestBalanceDay)
	}
}
