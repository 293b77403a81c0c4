package api

import (
	"github.com/warp/cashflow-engine/alerts"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/scenario"
)

// =============================================================================
// DATA TRANSFER OBJECTS - API request/response types
// =============================================================================
//
// Money is encoded as a JSON number with two decimals, dates as
// "YYYY-MM-DD" (null when absent).

// ForecastDTO is the response of GET /api/users/{id}/forecast.
type ForecastDTO struct {
	UserID           string         `json:"user_id"`
	Today            generic.Date   `json:"today"`
	StartingBalance  generic.Amount `json:"starting_balance"`
	SafetyBuffer     generic.Amount `json:"safety_buffer"`
	LowestBalance    generic.Amount `json:"lowest_balance"`
	LowestBalanceDay generic.Date   `json:"lowest_balance_date"`
	SafeToSpend      generic.Amount `json:"safe_to_spend"`
	SafeToSpendRaw   generic.Amount `json:"safe_to_spend_raw"`
	Days             []DayDTO       `json:"days"`
	Collisions       CollisionsDTO  `json:"collisions"`
	Warnings         []WarningDTO   `json:"warnings"`
}

// DayDTO is one calendar day.
type DayDTO struct {
	Date        generic.Date    `json:"date"`
	Balance     generic.Amount  `json:"balance"`
	Status      cashflow.Status `json:"status"`
	TotalIncome generic.Amount  `json:"total_income"`
	TotalBills  generic.Amount  `json:"total_bills"`
	TransferNet generic.Amount  `json:"transfer_net"`
	Income      []OccurrenceDTO `json:"income"`
	Bills       []OccurrenceDTO `json:"bills"`
	Transfers   []OccurrenceDTO `json:"transfers"`
}

// OccurrenceDTO is one dated event.
type OccurrenceDTO struct {
	SourceID      string         `json:"source_id"`
	Name          string         `json:"name"`
	Kind          cashflow.Kind  `json:"kind"`
	Date          generic.Date   `json:"date"`
	Amount        generic.Amount `json:"amount"`
	Frequency     string         `json:"frequency,omitempty"`
	Status        string         `json:"status,omitempty"`
	InvoiceID     string         `json:"invoice_id,omitempty"`
	FromAccountID string         `json:"from_account_id,omitempty"`
	ToAccountID   string         `json:"to_account_id,omitempty"`
}

// CollisionDTO is one day with clustered bills.
type CollisionDTO struct {
	Date        generic.Date      `json:"date"`
	BillCount   int               `json:"bill_count"`
	TotalAmount generic.Amount    `json:"total_amount"`
	Severity    cashflow.Severity `json:"severity"`
	Bills       []OccurrenceDTO   `json:"bills"`
}

// CollisionsDTO summarizes collisions.
type CollisionsDTO struct {
	Collisions      []CollisionDTO `json:"collisions"`
	TotalCollisions int            `json:"total_collisions"`
	WarningCount    int            `json:"warning_count"`
	CriticalCount   int            `json:"critical_count"`
	HighestAmount   *CollisionDTO  `json:"highest_amount"`
}

// WarningDTO is a data-quality warning.
type WarningDTO struct {
	SourceID string               `json:"source_id"`
	Kind     cashflow.Kind        `json:"kind"`
	Code     cashflow.WarningCode `json:"code"`
	Message  string               `json:"message"`
}

// ScenarioRequest is the body of POST /api/users/{id}/scenario. Amount is a
// pointer so a missing amount can be told apart from zero.
type ScenarioRequest struct {
	Name      string   `json:"name"`
	Amount    *float64 `json:"amount"`
	Date      string   `json:"date,omitempty"`
	Frequency string   `json:"frequency,omitempty"`

	// Optional forecast overrides.
	Days   int      `json:"days,omitempty"`
	Buffer *float64 `json:"buffer,omitempty"`
}

// ScenarioDTO is the response of a scenario evaluation.
type ScenarioDTO struct {
	Evaluated        bool           `json:"evaluated"`
	CanAfford        bool           `json:"can_afford"`
	Reason           string         `json:"reason"`
	LowestBalance    generic.Amount `json:"lowest_balance"`
	LowestBalanceDay generic.Date   `json:"lowest_balance_date"`
	BaselineLowest   generic.Amount `json:"baseline_lowest"`
	CausesOverdraft  bool           `json:"causes_overdraft"`
	CausesLowBalance bool           `json:"causes_low_balance"`
	FirstProblemDay  *generic.Date  `json:"first_problem_date"`
	TotalExtra       generic.Amount `json:"total_extra"`
	ExpenseDates     []generic.Date `json:"expense_dates"`
	Preview          PreviewDTO     `json:"preview"`
}

// PreviewDTO is the day window around the day of interest.
type PreviewDTO struct {
	Center generic.Date    `json:"center"`
	Days   []PreviewDayDTO `json:"days"`
}

// PreviewDayDTO compares baseline and scenario on one day.
type PreviewDayDTO struct {
	Date     generic.Date    `json:"date"`
	Baseline generic.Amount  `json:"baseline"`
	Scenario generic.Amount  `json:"scenario"`
	Extra    generic.Amount  `json:"extra"`
	Status   cashflow.Status `json:"status"`
}

// CollisionRequest is the body of POST /api/collisions.
type CollisionRequest struct {
	Days       []CollisionDayRequest `json:"days"`
	Thresholds *ThresholdsRequest    `json:"thresholds,omitempty"`
}

// CollisionDayRequest lists the bills due on one day.
type CollisionDayRequest struct {
	Date  string               `json:"date"`
	Bills []CollisionBillInput `json:"bills"`
}

// CollisionBillInput is one bill of a CollisionDayRequest.
type CollisionBillInput struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ThresholdsRequest overrides the collision thresholds.
type ThresholdsRequest struct {
	MinBillsForWarning  int     `json:"min_bills_for_warning,omitempty"`
	MinBillsForCritical int     `json:"min_bills_for_critical,omitempty"`
	CriticalAmount      float64 `json:"critical_amount,omitempty"`
}

// LoadDemoRequest is the body of POST /api/demo/load.
type LoadDemoRequest struct {
	ScenarioID string `json:"scenario_id"`
	UserID     string `json:"user_id,omitempty"` // defaults to "demo"
}

// LoadDemoResponse reports what was loaded.
type LoadDemoResponse struct {
	ScenarioID string `json:"scenario_id"`
	UserID     string `json:"user_id"`
	Accounts   int    `json:"accounts"`
	Income     int    `json:"income"`
	Bills      int    `json:"bills"`
	Transfers  int    `json:"transfers"`
}

// AlertsDTO is the response of GET /api/alerts.
type AlertsDTO struct {
	Enabled bool         `json:"enabled"`
	Runs    []alerts.Run `json:"runs"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toForecastDTO(userID string, f *cashflow.CalendarData) ForecastDTO {
	out := ForecastDTO{
		UserID:           userID,
		StartingBalance:  f.StartingBalance,
		SafetyBuffer:     f.SafetyBuffer,
		LowestBalance:    f.LowestBalance,
		LowestBalanceDay: f.LowestBalanceDay,
		SafeToSpend:      f.SafeToSpend,
		SafeToSpendRaw:   f.SafeToSpendRaw,
		Days:             make([]DayDTO, len(f.Days)),
		Collisions:       toCollisionsDTO(f.Collisions),
		Warnings:         toWarningDTOs(f.Warnings),
	}
	if len(f.Days) > 0 {
		out.Today = f.Days[0].Date
	}
	for i, d := range f.Days {
		out.Days[i] = DayDTO{
			Date:        d.Date,
			Balance:     d.Balance,
			Status:      d.Status,
			TotalIncome: d.TotalIncome(),
			TotalBills:  d.TotalBills(),
			TransferNet: d.TransferNet,
			Income:      toOccurrenceDTOs(d.Income),
			Bills:       toOccurrenceDTOs(d.Bills),
			Transfers:   toOccurrenceDTOs(d.Transfers),
		}
	}
	return out
}

func toOccurrenceDTOs(occs []cashflow.Occurrence) []OccurrenceDTO {
	out := make([]OccurrenceDTO, len(occs))
	for i, o := range occs {
		out[i] = OccurrenceDTO{
			SourceID:      o.SourceID,
			Name:          o.Name,
			Kind:          o.Kind,
			Date:          o.Date,
			Amount:        o.Amount,
			Frequency:     string(o.Frequency),
			Status:        o.Status,
			InvoiceID:     o.InvoiceID,
			FromAccountID: o.FromAccountID,
			ToAccountID:   o.ToAccountID,
		}
	}
	return out
}

func toCollisionDTO(c cashflow.BillCollision) CollisionDTO {
	return CollisionDTO{
		Date:        c.Date,
		BillCount:   c.BillCount,
		TotalAmount: c.TotalAmount,
		Severity:    c.Severity,
		Bills:       toOccurrenceDTOs(c.Bills),
	}
}

func toCollisionsDTO(s cashflow.CollisionSummary) CollisionsDTO {
	out := CollisionsDTO{
		Collisions:      make([]CollisionDTO, len(s.Collisions)),
		TotalCollisions: s.TotalCollisions,
		WarningCount:    s.WarningCount,
		CriticalCount:   s.CriticalCount,
	}
	for i, c := range s.Collisions {
		out.Collisions[i] = toCollisionDTO(c)
	}
	if s.HighestAmount != nil {
		h := toCollisionDTO(*s.HighestAmount)
		out.HighestAmount = &h
	}
	return out
}

func toWarningDTOs(ws []cashflow.Warning) []WarningDTO {
	out := make([]WarningDTO, len(ws))
	for i, w := range ws {
		out[i] = WarningDTO{SourceID: w.SourceID, Kind: w.Kind, Code: w.Code, Message: w.Message}
	}
	return out
}

func toScenarioDTO(r scenario.Result, p scenario.Preview) ScenarioDTO {
	out := ScenarioDTO{
		Evaluated:        r.Evaluated,
		CanAfford:        r.CanAfford,
		Reason:           r.Reason,
		LowestBalance:    r.LowestBalance,
		LowestBalanceDay: r.LowestBalanceDay,
		BaselineLowest:   r.BaselineLowest,
		CausesOverdraft:  r.CausesOverdraft,
		CausesLowBalance: r.CausesLowBalance,
		FirstProblemDay:  r.FirstProblemDay,
		TotalExtra:       r.TotalExtra,
		ExpenseDates:     r.ExpenseDates,
		Preview:          PreviewDTO{Center: p.Center, Days: make([]PreviewDayDTO, len(p.Days))},
	}
	if out.ExpenseDates == nil {
		out.ExpenseDates = []generic.Date{}
	}
	for i, d := range p.Days {
		out.Preview.Days[i] = PreviewDayDTO{
			Date: d.Date, Baseline: d.Baseline, Scenario: d.Scenario, Extra: d.Extra, Status: d.Status,
		}
	}
	return out
}
