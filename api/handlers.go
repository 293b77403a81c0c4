/*
handlers.go - HTTP API handlers for the cash-flow forecasting engine

PURPOSE:
  Exposes the forecast engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the service layer.

ENDPOINTS:
  Forecasts:
    GET    /api/users                         Users with any records
    GET    /api/users/{id}/forecast           Day-by-day forecast
           ?days=60&buffer=500&today=2025-03-01&net_transfers=true
    POST   /api/users/{id}/scenario           "Can I afford this?"
    POST   /api/collisions                    Collision analysis of posted days

  Records:
    GET    /api/users/{id}/{kind}             kind: accounts|income|bills|transfers
    POST   /api/users/{id}/{kind}             Create or replace (ID generated if empty)
    DELETE /api/users/{id}/{kind}/{recordID}  Delete one record

  Demo:
    GET    /api/demo                          List demo households
    POST   /api/demo/load                     Load a household
    POST   /api/reset                         Delete everything (dev only)

  Alerts:
    GET    /api/alerts                        Recent alert runs
    POST   /api/alerts/run                    Run the alert check now

TODAY:
  Read from the clock once per request (Handler.Now) unless ?today= is
  given, and passed down explicitly. No code below the handler reads the
  clock.

ERROR HANDLING:
  Errors are returned as JSON {error, details} with an HTTP status:
  - 400: Invalid input (bad query parameters, bad buffer, bad JSON)
  - 404: Unknown user or record
  - 422: The stored data cannot produce a forecast (no starting balance)
  - 500: Internal errors
  An invalid hypothetical expense is not an error: the scenario response
  has evaluated=false and a reason.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - demo.go: Demo household handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/cashflow-engine/alerts"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/scenario"
	"github.com/warp/cashflow-engine/service"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the dependencies of all endpoints.
type Handler struct {
	Service *service.Service

	// Alerts is optional; nil disables the alert endpoints' data.
	Alerts *alerts.Scheduler

	Logger logrus.FieldLogger

	// Now is the clock read at the request boundary. Defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a handler.
func NewHandler(svc *service.Service, sched *alerts.Scheduler, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = svc.Logger
	}
	return &Handler{Service: svc, Alerts: sched, Logger: logger, Now: time.Now}
}

func (h *Handler) today(r *http.Request) (generic.Date, error) {
	if q := r.URL.Query().Get("today"); q != "" {
		d, err := h.Service.Builder().ParseDate(q)
		if err != nil {
			return generic.Date{}, &generic.ConfigError{Field: "today", Value: q, Err: generic.ErrInvalidDate}
		}
		return d, nil
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	return h.Service.Today(now()), nil
}

// =============================================================================
// FORECAST ENDPOINTS
// =============================================================================

// ListUsers returns every user with stored records.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users", err)
		return
	}
	if users == nil {
		users = []string{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GetForecast returns the day-by-day forecast of a user.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	opts, err := h.forecastOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid forecast parameters", err)
		return
	}

	forecast, err := h.Service.Forecast(r.Context(), userID, opts)
	if err != nil {
		h.writeForecastError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, toForecastDTO(userID, forecast))
}

// EvaluateScenario overlays a hypothetical expense on the user's forecast.
func (h *Handler) EvaluateScenario(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	opts, err := h.forecastOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid forecast parameters", err)
		return
	}
	if req.Days != 0 {
		opts.HorizonDays = req.Days
	}
	if req.Buffer != nil {
		buf, err := generic.AmountFromFloat(*req.Buffer)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid buffer", err)
			return
		}
		opts.SafetyBuffer = &buf
	}

	exp := scenario.Expense{Name: req.Name}
	if req.Frequency != "" {
		exp.Frequency = generic.ParseFrequency(req.Frequency)
	}
	if req.Amount != nil {
		exp.Amount = *req.Amount
	}
	if req.Date != "" {
		d, err := h.Service.Builder().ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid expense date", err)
			return
		}
		exp.Date = d
	}

	forecast, err := h.Service.Forecast(r.Context(), userID, opts)
	if err != nil {
		h.writeForecastError(w, userID, err)
		return
	}

	result, preview := scenario.ComputeScenario(forecast, exp)
	h.Logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"evaluated":  result.Evaluated,
		"can_afford": result.CanAfford,
	}).Debug("scenario evaluated")

	writeJSON(w, http.StatusOK, toScenarioDTO(result, preview))
}

// DetectCollisions analyzes posted days for bill collisions.
func (h *Handler) DetectCollisions(w http.ResponseWriter, r *http.Request) {
	var req CollisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	builder := h.Service.Builder()
	days := make([]cashflow.CalendarDay, 0, len(req.Days))
	for _, in := range req.Days {
		date, err := builder.ParseDate(in.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid day", err)
			return
		}
		day := cashflow.CalendarDay{Date: date}
		for i, b := range in.Bills {
			amt, err := generic.AmountFromFloat(b.Amount)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid bill amount", err)
				return
			}
			id := b.ID
			if id == "" {
				id = fmt.Sprintf("%s-%d", in.Date, i)
			}
			day.Bills = append(day.Bills, cashflow.Occurrence{
				Date: date, SourceID: id, Name: b.Name, Amount: amt.Round(2), Kind: cashflow.KindBill,
			})
		}
		days = append(days, day)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	thresholds := h.Service.Settings.Thresholds
	if t := req.Thresholds; t != nil {
		if t.MinBillsForWarning != 0 {
			thresholds.MinBillsForWarning = t.MinBillsForWarning
		}
		if t.MinBillsForCritical != 0 {
			thresholds.MinBillsForCritical = t.MinBillsForCritical
		}
		if t.CriticalAmount != 0 {
			amt, err := generic.AmountFromFloat(t.CriticalAmount)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid critical amount", err)
				return
			}
			thresholds.CriticalAmount = amt
		}
	}

	writeJSON(w, http.StatusOK, toCollisionsDTO(cashflow.DetectCollisions(days, thresholds)))
}

func (h *Handler) forecastOptions(r *http.Request) (service.Options, error) {
	q := r.URL.Query()

	today, err := h.today(r)
	if err != nil {
		return service.Options{}, err
	}
	opts := service.Options{Today: today}

	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return service.Options{}, &generic.ConfigError{Field: "days", Value: v, Err: generic.ErrInvalidHorizon}
		}
		opts.HorizonDays = n
	}
	if v := q.Get("buffer"); v != "" {
		amt, err := generic.ParseAmount(v)
		if err != nil {
			return service.Options{}, &generic.ConfigError{Field: "buffer", Value: v, Err: err}
		}
		if err := cashflow.ValidateSafetyBuffer(amt); err != nil {
			return service.Options{}, err
		}
		opts.SafetyBuffer = &amt
	}
	if v := q.Get("net_transfers"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return service.Options{}, &generic.ConfigError{Field: "net_transfers", Value: v, Err: err}
		}
		opts.NetTransfers = &b
	}
	return opts, nil
}

func (h *Handler) writeForecastError(w http.ResponseWriter, userID string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "user not found", err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid forecast parameters", err)
	case errors.Is(err, generic.ErrNoStartingBalance):
		writeError(w, http.StatusUnprocessableEntity, "cannot forecast without a starting balance", err)
	default:
		h.Logger.WithError(err).WithField("user_id", userID).Error("forecast failed")
		writeError(w, http.StatusInternalServerError, "failed to generate forecast", err)
	}
}

// =============================================================================
// RECORD ENDPOINTS
// =============================================================================

// Record kinds in URLs.
const (
	kindAccounts  = "accounts"
	kindIncome    = "income"
	kindBills     = "bills"
	kindTransfers = "transfers"
)

// ListRecords returns a user's records of one kind.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	ctx := r.Context()
	st := h.Service.Store

	var out any
	var err error
	switch chi.URLParam(r, "kind") {
	case kindAccounts:
		out, err = st.ListAccounts(ctx, userID)
	case kindIncome:
		out, err = st.ListIncome(ctx, userID)
	case kindBills:
		out, err = st.ListBills(ctx, userID)
	case kindTransfers:
		out, err = st.ListTransfers(ctx, userID)
	default:
		writeError(w, http.StatusNotFound, "unknown record kind", chi.URLParam(r, "kind"))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list records", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// SaveRecord creates or replaces a record. The user comes from the path.
func (h *Handler) SaveRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	ctx := r.Context()
	st := h.Service.Store

	switch chi.URLParam(r, "kind") {
	case kindAccounts:
		saveRecord(h, w, r, func(rec *factory.AccountRecord) error {
			rec.UserID, rec.ID = userID, orNewID(rec.ID)
			return st.SaveAccount(ctx, *rec)
		})
	case kindIncome:
		saveRecord(h, w, r, func(rec *factory.IncomeRecord) error {
			rec.UserID, rec.ID = userID, orNewID(rec.ID)
			return st.SaveIncome(ctx, *rec)
		})
	case kindBills:
		saveRecord(h, w, r, func(rec *factory.BillRecord) error {
			rec.UserID, rec.ID = userID, orNewID(rec.ID)
			return st.SaveBill(ctx, *rec)
		})
	case kindTransfers:
		saveRecord(h, w, r, func(rec *factory.TransferRecord) error {
			rec.UserID, rec.ID = userID, orNewID(rec.ID)
			return st.SaveTransfer(ctx, *rec)
		})
	default:
		writeError(w, http.StatusNotFound, "unknown record kind", chi.URLParam(r, "kind"))
	}
}

// DeleteRecord deletes one record.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	recordID := chi.URLParam(r, "recordID")
	ctx := r.Context()
	st := h.Service.Store

	var err error
	switch chi.URLParam(r, "kind") {
	case kindAccounts:
		err = st.DeleteAccount(ctx, userID, recordID)
	case kindIncome:
		err = st.DeleteIncome(ctx, userID, recordID)
	case kindBills:
		err = st.DeleteBill(ctx, userID, recordID)
	case kindTransfers:
		err = st.DeleteTransfer(ctx, userID, recordID)
	default:
		writeError(w, http.StatusNotFound, "unknown record kind", chi.URLParam(r, "kind"))
		return
	}

	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "record not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "failed to delete record", err)
	}
}

func saveRecord[T any](h *Handler, w http.ResponseWriter, r *http.Request, save func(*T) error) {
	var rec T
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := save(&rec); err != nil {
		h.Logger.WithError(err).Error("failed to save record")
		writeError(w, http.StatusInternalServerError, "failed to save record", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// =============================================================================
// ALERT ENDPOINTS
// =============================================================================

// ListAlerts returns the recent alert runs, newest first.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if h.Alerts == nil {
		writeJSON(w, http.StatusOK, AlertsDTO{Runs: []alerts.Run{}})
		return
	}
	writeJSON(w, http.StatusOK, AlertsDTO{Enabled: true, Runs: h.Alerts.Runs()})
}

// RunAlerts triggers an alert check immediately.
func (h *Handler) RunAlerts(w http.ResponseWriter, r *http.Request) {
	if h.Alerts == nil {
		writeError(w, http.StatusNotFound, "alerts are disabled", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.Alerts.RunOnce(r.Context()))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, details any) {
	resp := ErrorResponse{Error: message}
	switch d := details.(type) {
	case nil:
	case error:
		resp.Details = d.Error()
	default:
		resp.Details = d
	}
	writeJSON(w, status, resp)
}
