/*
demo.go - Demo household handlers

PURPOSE:
  Loads pre-built households (factory/demo.go) so the API can be explored
  without entering data by hand. Dates are relative to "today", so a demo
  always has upcoming paydays and bills.

USAGE VIA API:
  GET  /api/demo
  POST /api/demo/load   {"scenario_id": "month-end-crunch", "user_id": "demo"}
  POST /api/reset

NOTE:
  Loading a demo replaces the target user's records. Reset deletes every
  user. Only use in development/demo environments.

SEE ALSO:
  - factory/demo.go: Household definitions
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/warp/cashflow-engine/factory"
)

// DefaultDemoUser receives demo households when no user is named.
const DefaultDemoUser = "demo"

// ListDemos returns the available demo households.
func (h *Handler) ListDemos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.DemoHouseholds())
}

// LoadDemo loads a demo household for one user.
func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	var req LoadDemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if !knownDemo(req.ScenarioID) {
		writeError(w, http.StatusBadRequest, "unknown demo household", req.ScenarioID)
		return
	}
	if req.UserID == "" {
		req.UserID = DefaultDemoUser
	}

	today, err := h.today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid today", err)
		return
	}

	records, err := h.Service.LoadDemo(r.Context(), req.ScenarioID, req.UserID, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load demo household", err)
		return
	}

	writeJSON(w, http.StatusOK, LoadDemoResponse{
		ScenarioID: req.ScenarioID,
		UserID:     req.UserID,
		Accounts:   len(records.Accounts),
		Income:     len(records.Income),
		Bills:      len(records.Bills),
		Transfers:  len(records.Transfers),
	})
}

// ResetDatabase deletes all records of all users.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset database", err)
		return
	}
	h.Logger.Warn("database reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func knownDemo(id string) bool {
	for _, d := range factory.DemoHouseholds() {
		if d.ID == id {
			return true
		}
	}
	return false
}
