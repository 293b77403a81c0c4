package cashflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(y int, m time.Month, d int) generic.Date {
	return generic.NewDate(y, m, d)
}

func money(s string) generic.Amount {
	return generic.MustAmount(s)
}

func balance(s string) *generic.Amount {
	a := generic.MustAmount(s)
	return &a
}

func account(id, bal string, spendable *bool) cashflow.Account {
	return cashflow.Account{ID: id, Name: id, CurrentBalance: balance(bal), IncludeInSpendable: spendable}
}

func income(id, amount string, f generic.Frequency, anchor generic.Date) cashflow.IncomeSource {
	return cashflow.IncomeSource{EventSource: cashflow.EventSource{
		ID: id, Name: id, Amount: money(amount), Frequency: f, Anchor: anchor,
	}}
}

func bill(id, amount string, f generic.Frequency, anchor generic.Date) cashflow.Bill {
	return cashflow.Bill{EventSource: cashflow.EventSource{
		ID: id, Name: id, Amount: money(amount), Frequency: f, Anchor: anchor,
	}}
}

func assertAmount(t *testing.T, want string, got generic.Amount, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, money(want).String(), got.String(), msgAndArgs...)
}

// household is the reference household: $1,000 spendable, biweekly $2,000
// income from today, $1,500 due on the 1st and $500 anchored on Jan 31.
func household(t *testing.T) (*cashflow.CalendarData, generic.Date) {
	t.Helper()
	today := day(2025, time.February, 1)

	forecast, err := cashflow.GenerateForecast(
		[]cashflow.Account{
			account("empty", "0", nil),
			account("checking", "1000", cashflow.Bool(true)),
			account("savings", "5000", cashflow.Bool(false)),
		},
		[]cashflow.IncomeSource{income("salary", "2000", generic.FreqBiweekly, today)},
		[]cashflow.Bill{
			bill("rent", "1500", generic.FreqMonthly, day(2025, time.January, 1)),
			bill("car", "500", generic.FreqMonthly, day(2025, time.January, 31)),
		},
		nil, nil,
		60, money("500"), today,
	)
	require.NoError(t, err)
	return forecast, today
}

// =============================================================================
// REFERENCE HOUSEHOLD
// =============================================================================

func TestForecast_ReferenceHousehold(t *testing.T) {
	// GIVEN: $0 + $1,000 spendable accounts and a $5,000 excluded account
	// WHEN: Forecasting 60 days from Feb 1, 2025 with a $500 buffer
	// THEN: Starting balance is $1,000, the Jan-31 bill lands on Feb 28 and
	//       Mar 31, income arrives at least 4 times, statuses follow the buffer

	forecast, today := household(t)

	assertAmount(t, "1000", forecast.StartingBalance)
	require.Len(t, forecast.Days, 60)
	assert.True(t, forecast.Days[0].Date.Equal(today))

	var carDays []string
	incomeCount := 0
	for _, d := range forecast.Days {
		for _, b := range d.Bills {
			if b.SourceID == "car" {
				carDays = append(carDays, d.Date.String())
			}
		}
		incomeCount += len(d.Income)
	}
	assert.Equal(t, []string{"2025-02-28", "2025-03-31"}, carDays)
	assert.GreaterOrEqual(t, incomeCount, 4)

	for _, d := range forecast.Days {
		assert.Equal(t, cashflow.Classify(d.Balance, money("500")), d.Status, "status on %s", d.Date)
	}

	// Day 0: 1000 + 2000 (salary) - 1500 (rent)
	assertAmount(t, "1500", forecast.Days[0].Balance)
	assert.Equal(t, cashflow.StatusGreen, forecast.Days[0].Status)
}

func TestForecast_BalanceRecurrence(t *testing.T) {
	forecast, _ := household(t)

	prev := forecast.StartingBalance
	for i, d := range forecast.Days {
		want := prev.Add(d.TotalIncome()).Sub(d.TotalBills())
		assertAmount(t, want.String(), d.Balance, "day %d", i)
		prev = d.Balance
	}
}

func TestForecast_LowestBalance_EarliestDayWins(t *testing.T) {
	forecast, _ := household(t)

	lowest := forecast.Days[0].Balance
	for _, d := range forecast.Days {
		lowest = lowest.Min(d.Balance)
	}
	assertAmount(t, lowest.String(), forecast.LowestBalance)

	for _, d := range forecast.Days {
		if d.Balance.Equal(lowest) {
			assert.True(t, d.Date.Equal(forecast.LowestBalanceDay), "first day at the minimum must be reported")
			break
		}
	}
}

func TestForecast_TiedMinimum_ReportsFirstDay(t *testing.T) {
	// GIVEN: A flat balance with no events
	// WHEN: Forecasting 10 days
	// THEN: The lowest balance day is day 0

	today := day(2025, time.May, 5)
	forecast, err := cashflow.GenerateForecast(
		[]cashflow.Account{account("checking", "800", nil)},
		nil, nil, nil, nil, 10, money("100"), today,
	)
	require.NoError(t, err)

	assert.True(t, forecast.LowestBalanceDay.Equal(today))
	assertAmount(t, "800", forecast.LowestBalance)
}

// =============================================================================
// SOURCE FILTERING
// =============================================================================

func TestForecast_InactiveSource_ContributesNothing(t *testing.T) {
	today := day(2025, time.March, 1)
	inactive := bill("gym", "50", generic.FreqWeekly, today)
	inactive.Active = cashflow.Bool(false)

	forecast, err := cashflow.GenerateForecast(
		[]cashflow.Account{account("checking", "1000", nil)},
		nil, []cashflow.Bill{inactive}, nil, nil, 30, money("100"), today,
	)
	require.NoError(t, err)

	for _, d := range forecast.Days {
		assert.Empty(t, d.Bills)
	}
	assertAmount(t, "1000", forecast.LowestBalance)
}

func TestForecast_NilActive_FailsOpen(t *testing.T) {
	today := day(2025, time.March, 1)
	src := bill("gym", "50", generic.FreqOneTime, today)
	src.Active = nil

	forecast, err := cashflow.GenerateForecast(
		[]cashflow.Account{account("checking", "1000", nil)},
		nil, []cashflow.Bill{src}, nil, nil, 5, money("100"), today,
	)
	require.NoError(t, err)
	assert.Len(t, forecast.Days[0].Bills, 1)
}

func TestForecast_WeeklyIncomeEndDate_Truncates(t *testing.T) {
	// GIVEN: Weekly income ending 30 days out
	// WHEN: Forecasting 60 days
	// THEN: 4-5 occurrences, none after the end date

	today := day(2025, time.June, 2)
	end := today.AddDays(30)
	src := income("gig", "300", generic.FreqWeekly, today)
	src.EndDate = &end

	forecast, err := cashflow.GenerateForecast(
		[]cashflow.Account{account("checking", "100", nil)},
		[]cashflow.IncomeSource{src}, nil, nil, nil, 60, money("50"), today,
	)
	require.NoError(t, err)

	count := 0
	for _, d := range forecast.Days {
		for range d.Income {
			count++
			assert.True(t, d.Date.BeforeOrEqual(end))
		}
	}
	assert.GreaterOrEqual(t, count, 4)
	assert.LessOrEqual(t, count, 5)
}

// =============================================================================
// PRECONDITIONS
// =============================================================================

func TestForecast_Preconditions(t *testing.T) {
	today := day(2025, time.March, 1)
	accounts := []cashflow.Account{account("checking", "1000", nil)}

	_, err := cashflow.GenerateForecast(accounts, nil, nil, nil, nil, 30, money("0"), today)
	assert.ErrorIs(t, err, generic.ErrInvalidSafetyBuffer)

	_, err = cashflow.GenerateForecast(accounts, nil, nil, nil, nil, 30, money("-5"), today)
	assert.ErrorIs(t, err, generic.ErrInvalidSafetyBuffer)

	_, err = cashflow.GenerateForecast(accounts, nil, nil, nil, nil, 0, money("100"), today)
	assert.ErrorIs(t, err, generic.ErrInvalidHorizon)

	_, err = cashflow.GenerateForecast(accounts, nil, nil, nil, nil, 30, money("100"), generic.Date{})
	assert.ErrorIs(t, err, generic.ErrMissingToday)
}

func TestForecast_NoStartingBalance_IsFatal(t *testing.T) {
	today := day(2025, time.March, 1)

	broken := []cashflow.Account{{ID: "a"}, {ID: "b"}}
	_, err := cashflow.GenerateForecast(broken, nil, nil, nil, nil, 30, money("100"), today)
	require.ErrorIs(t, err, generic.ErrNoStartingBalance)

	var sbErr *generic.StartingBalanceError
	require.ErrorAs(t, err, &sbErr)
	assert.Equal(t, []string{"a", "b"}, sbErr.Skipped)
	assert.Equal(t, 2, sbErr.Accounts)
}

func TestForecast_NoAccounts_StartsAtZero(t *testing.T) {
	// GIVEN: No accounts at all and $2,000 biweekly income from today
	// WHEN: Forecasting
	// THEN: The forecast starts at $0.00 and picks up the income

	today := day(2025, time.March, 1)
	forecast, err := cashflow.GenerateForecast(
		nil,
		[]cashflow.IncomeSource{income("salary", "2000", generic.FreqBiweekly, today)},
		nil, nil, nil, 14, money("100"), today,
	)
	require.NoError(t, err)

	assertAmount(t, "0", forecast.StartingBalance)
	assert.Empty(t, forecast.Warnings)
	assertAmount(t, "2000", forecast.Days[0].Balance)
}

func TestForecast_CardOnlyHousehold_StartsAtZero(t *testing.T) {
	// GIVEN: A household whose only account is a card owing $300, due on the 10th
	// WHEN: Building the input from the snapshot and forecasting
	// THEN: No error, a $0.00 start and the card payment is still projected

	today := day(2025, time.March, 1)
	snap := cashflow.Snapshot{
		Accounts: []cashflow.Account{{
			ID: "visa", Name: "Visa", CurrentBalance: balance("300"),
			CreditCard: &cashflow.CreditCardTerms{PaymentDueDay: 10},
		}},
		Income: []cashflow.IncomeSource{income("salary", "2000", generic.FreqBiweekly, today)},
	}

	in := snap.Input(today, 30, money("100"))
	require.Empty(t, in.Accounts)

	forecast, err := (&cashflow.Generator{}).Generate(in)
	require.NoError(t, err)
	assertAmount(t, "0", forecast.StartingBalance)

	var paid []string
	for _, d := range forecast.Days {
		for _, b := range d.Bills {
			assert.Equal(t, cashflow.CreditCardPaymentStatus, b.Status)
			paid = append(paid, d.Date.String())
		}
	}
	assert.Equal(t, []string{"2025-03-10"}, paid)
}

func TestForecast_PartiallyBrokenAccounts_WarnAndContinue(t *testing.T) {
	today := day(2025, time.March, 1)
	accounts := []cashflow.Account{
		account("checking", "700", nil),
		{ID: "legacy"},
	}

	forecast, err := cashflow.GenerateForecast(accounts, nil, nil, nil, nil, 7, money("100"), today)
	require.NoError(t, err)

	assertAmount(t, "700", forecast.StartingBalance)
	require.Len(t, forecast.Warnings, 1)
	assert.Equal(t, cashflow.WarnMissingBalance, forecast.Warnings[0].Code)
	assert.Equal(t, "legacy", forecast.Warnings[0].SourceID)
}

// =============================================================================
// DATA-QUALITY WARNINGS
// =============================================================================

func TestForecast_UnknownFrequency_Warns(t *testing.T) {
	today := day(2025, time.March, 1)
	odd := bill("mystery", "99", generic.ParseFrequency("every_full_moon"), today)
	undated := bill("undated", "10", generic.FreqMonthly, generic.Date{})

	forecast, err := cashflow.GenerateForecast(
		[]cashflow.Account{account("checking", "1000", nil)},
		nil, []cashflow.Bill{odd, undated}, nil, nil, 30, money("100"), today,
	)
	require.NoError(t, err)

	codes := map[string]cashflow.WarningCode{}
	for _, w := range forecast.Warnings {
		codes[w.SourceID] = w.Code
	}
	assert.Equal(t, cashflow.WarnUnknownFrequency, codes["mystery"])
	assert.Equal(t, cashflow.WarnMissingAnchor, codes["undated"])
	assertAmount(t, "1000", forecast.LowestBalance)
}

// =============================================================================
// SAFE TO SPEND
// =============================================================================

func TestForecast_SafeToSpend_UsesNearTermWindow(t *testing.T) {
	// GIVEN: $1,000 today, a $600 bill on day 5 and a $900 bill on day 20
	// WHEN: Forecasting with a $100 buffer and the default 14-day window
	// THEN: Safe to spend = (1000 - 600) - 100 = 300; day 20 is outside the window

	today := day(2025, time.April, 1)
	forecast, err := cashflow.GenerateForecast(
		[]cashflow.Account{account("checking", "1000", nil)},
		nil,
		[]cashflow.Bill{
			bill("insurance", "600", generic.FreqOneTime, today.AddDays(5)),
			bill("tuition", "900", generic.FreqOneTime, today.AddDays(20)),
		},
		nil, nil, 30, money("100"), today,
	)
	require.NoError(t, err)

	assertAmount(t, "300", forecast.SafeToSpend)
	assertAmount(t, "300", forecast.SafeToSpendRaw)
	assertAmount(t, "-500", forecast.LowestBalance)
}

func TestForecast_SafeToSpend_FlooredAtZero(t *testing.T) {
	today := day(2025, time.April, 1)
	forecast, err := cashflow.GenerateForecast(
		[]cashflow.Account{account("checking", "200", nil)},
		nil, nil, nil, nil, 30, money("500"), today,
	)
	require.NoError(t, err)

	assertAmount(t, "0", forecast.SafeToSpend)
	assertAmount(t, "-300", forecast.SafeToSpendRaw)
}

// =============================================================================
// CREDIT CARDS
// =============================================================================

func TestForecast_CreditCardPayment_ProjectedMonthly(t *testing.T) {
	// GIVEN: A card owing $2,000 at 24% APR, due on the 10th
	// WHEN: Forecasting 45 days from Apr 1
	// THEN: A $60.00 payment (1% + one month of interest) on Apr 10 and May 10

	today := day(2025, time.April, 1)
	card := cashflow.Account{
		ID: "visa", Name: "Visa", CurrentBalance: balance("2000"),
		CreditCard: &cashflow.CreditCardTerms{
			CreditLimit:   money("5000"),
			APR:           money("24").Value,
			PaymentDueDay: 10,
		},
	}

	forecast, err := cashflow.GenerateForecast(
		[]cashflow.Account{account("checking", "3000", nil)},
		nil, nil, nil, []cashflow.Account{card}, 45, money("100"), today,
	)
	require.NoError(t, err)

	var paid []string
	for _, d := range forecast.Days {
		for _, b := range d.Bills {
			assert.Equal(t, "Visa payment", b.Name)
			assert.Equal(t, cashflow.CreditCardPaymentStatus, b.Status)
			assertAmount(t, "60", b.Amount)
			paid = append(paid, d.Date.String())
		}
	}
	assert.Equal(t, []string{"2025-04-10", "2025-05-10"}, paid)
	assertAmount(t, "3000", forecast.StartingBalance)
}

func TestCreditCardTerms_EstimatedPayment(t *testing.T) {
	terms := cashflow.CreditCardTerms{APR: money("18").Value}

	assertAmount(t, "25", terms.EstimatedPayment(money("300")), "floor applies")
	assertAmount(t, "20", terms.EstimatedPayment(money("20")), "never more than the balance")
	assertAmount(t, "0", terms.EstimatedPayment(money("0")))

	minimum := money("75")
	terms.MinimumPayment = &minimum
	assertAmount(t, "75", terms.EstimatedPayment(money("4000")))
}

func TestForecast_CreditCardWithoutDueDay_Warns(t *testing.T) {
	today := day(2025, time.April, 1)
	card := cashflow.Account{
		ID: "amex", CurrentBalance: balance("900"),
		CreditCard: &cashflow.CreditCardTerms{PaymentDueDay: 31},
	}

	forecast, err := cashflow.GenerateForecast(
		[]cashflow.Account{account("checking", "1000", nil)},
		nil, nil, nil, []cashflow.Account{card}, 60, money("100"), today,
	)
	require.NoError(t, err)

	for _, d := range forecast.Days {
		assert.Empty(t, d.Bills)
	}
	require.Len(t, forecast.Warnings, 1)
	assert.Equal(t, cashflow.WarnCardNotPayable, forecast.Warnings[0].Code)
}

func TestSnapshot_Input_RoutesCreditCards(t *testing.T) {
	snap := cashflow.Snapshot{Accounts: []cashflow.Account{
		account("checking", "1000", nil),
		{ID: "visa", CurrentBalance: balance("400"), CreditCard: &cashflow.CreditCardTerms{PaymentDueDay: 5}},
	}}

	in := snap.Input(day(2025, time.April, 1), 30, money("100"))
	require.Len(t, in.Accounts, 1)
	require.Len(t, in.CreditCards, 1)
	assert.Equal(t, "visa", in.CreditCards[0].ID)
}

// =============================================================================
// TRANSFERS
// =============================================================================

func TestForecast_Transfers_NettingOptIn(t *testing.T) {
	// GIVEN: $200 moved from checking (spendable) to savings (excluded) today
	// WHEN: Forecasting with and without netting
	// THEN: The transfer is attached either way; only netting changes the balance

	today := day(2025, time.April, 1)
	accounts := []cashflow.Account{
		account("checking", "1000", nil),
		account("savings", "5000", cashflow.Bool(false)),
	}
	transfer := cashflow.Transfer{
		EventSource:   cashflow.EventSource{ID: "sweep", Amount: money("200"), Frequency: generic.FreqOneTime, Anchor: today},
		FromAccountID: "checking",
		ToAccountID:   "savings",
	}
	input := cashflow.ForecastInput{
		Accounts:     accounts,
		Transfers:    []cashflow.Transfer{transfer},
		HorizonDays:  3,
		SafetyBuffer: money("100"),
		Today:        today,
	}

	var g cashflow.Generator
	plain, err := g.Generate(input)
	require.NoError(t, err)
	require.Len(t, plain.Days[0].Transfers, 1)
	assertAmount(t, "-200", plain.Days[0].TransferNet)
	assertAmount(t, "1000", plain.Days[0].Balance)

	input.NetTransfers = true
	netted, err := g.Generate(input)
	require.NoError(t, err)
	assertAmount(t, "800", netted.Days[0].Balance)
}

func TestForecast_Transfers_UnknownLeg_NoEffect(t *testing.T) {
	today := day(2025, time.April, 1)
	transfer := cashflow.Transfer{
		EventSource:   cashflow.EventSource{ID: "t", Amount: money("200"), Frequency: generic.FreqOneTime, Anchor: today},
		FromAccountID: "checking",
		ToAccountID:   "brokerage",
	}
	g := cashflow.Generator{}
	forecast, err := g.Generate(cashflow.ForecastInput{
		Accounts:     []cashflow.Account{account("checking", "1000", nil)},
		Transfers:    []cashflow.Transfer{transfer},
		HorizonDays:  3,
		SafetyBuffer: money("100"),
		Today:        today,
		NetTransfers: true,
	})
	require.NoError(t, err)
	assertAmount(t, "1000", forecast.Days[0].Balance)
}

// =============================================================================
// DETERMINISM
// =============================================================================

func TestForecast_ParallelMatchesSequential(t *testing.T) {
	today := day(2025, time.January, 15)
	input := cashflow.ForecastInput{
		Accounts: []cashflow.Account{account("checking", "2500", nil)},
		Income: []cashflow.IncomeSource{
			income("salary", "2100", generic.FreqSemiMonthly, day(2025, time.January, 15)),
			income("side", "150", generic.FreqWeekly, day(2025, time.January, 3)),
		},
		Bills: []cashflow.Bill{
			bill("rent", "1400", generic.FreqMonthly, day(2025, time.January, 1)),
			bill("phone", "80", generic.FreqMonthly, day(2024, time.December, 31)),
			bill("insurance", "600", generic.FreqQuarterly, day(2024, time.November, 30)),
		},
		HorizonDays:  120,
		SafetyBuffer: money("300"),
		Today:        today,
	}

	sequential, err := (&cashflow.Generator{}).Generate(input)
	require.NoError(t, err)
	parallel, err := (&cashflow.Generator{Parallel: true}).Generate(input)
	require.NoError(t, err)

	require.Len(t, parallel.Days, len(sequential.Days))
	for i := range sequential.Days {
		assert.Equal(t, sequential.Days[i].Balance.String(), parallel.Days[i].Balance.String())
		assert.Equal(t, sequential.Days[i].Status, parallel.Days[i].Status)
		assert.Equal(t, len(sequential.Days[i].Bills), len(parallel.Days[i].Bills))
	}
	assert.Equal(t, sequential.Collisions.TotalCollisions, parallel.Collisions.TotalCollisions)
}

func TestForecast_SourceOrderDoesNotMatter(t *testing.T) {
	today := day(2025, time.January, 1)
	bills := []cashflow.Bill{
		bill("a", "100", generic.FreqMonthly, day(2025, time.January, 5)),
		bill("b", "250", generic.FreqWeekly, day(2025, time.January, 2)),
		bill("c", "75", generic.FreqBiweekly, day(2025, time.January, 9)),
	}
	reversed := []cashflow.Bill{bills[2], bills[1], bills[0]}
	accounts := []cashflow.Account{account("checking", "5000", nil)}

	forward, err := cashflow.GenerateForecast(accounts, nil, bills, nil, nil, 60, money("100"), today)
	require.NoError(t, err)
	backward, err := cashflow.GenerateForecast(accounts, nil, reversed, nil, nil, 60, money("100"), today)
	require.NoError(t, err)

	for i := range forward.Days {
		assert.Equal(t, forward.Days[i].Balance.String(), backward.Days[i].Balance.String())
	}
}
