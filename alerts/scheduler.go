/*
Package alerts runs a scheduled check of every stored user's forecast.

PURPOSE:
  Once a day (cron schedule from config) the scheduler recomputes each
  user's forecast and records what needs attention: the first day the
  balance goes negative, the first day it drops below the safety buffer,
  and every bill collision. Runs are kept in memory for the API to show.

DESIGN:
  - robfig/cron drives the schedule; RunOnce can be called directly
  - "today" is read once per run from the Now clock
  - One failing user is logged and recorded but does not stop the run
  - Only the most recent MaxRuns runs are kept

USAGE:
  sched, err := alerts.NewScheduler(svc, "0 7 * * *", logger)
  sched.Start()
  defer sched.Stop()

SEE ALSO:
  - service/service.go: Forecast
  - api/handlers.go: GET /api/alerts
*/
package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/service"
)

// MaxRuns bounds the run history.
const MaxRuns = 100

// Kind of alert.
type Kind string

const (
	KindLowBalance Kind = "low_balance"
	KindOverdraft  Kind = "overdraft"
	KindCollision  Kind = "collision"
)

// Alert is one thing a user should look at.
type Alert struct {
	UserID  string         `json:"user_id"`
	Kind    Kind           `json:"kind"`
	Date    generic.Date   `json:"date"`
	Amount  generic.Amount `json:"amount"`
	Message string         `json:"message"`
}

// Run records one pass over all users.
type Run struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Today      generic.Date `json:"today"`
	Users      int          `json:"users"`
	Alerts     []Alert      `json:"alerts"`
	Errors     []string     `json:"errors,omitempty"`
}

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler periodically checks forecasts.
type Scheduler struct {
	Service *service.Service
	Logger  logrus.FieldLogger

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	cron *cron.Cron
	spec string

	mu   sync.Mutex
	runs []Run
}

// NewScheduler creates a scheduler for a standard 5-field cron spec.
func NewScheduler(svc *service.Service, spec string, logger logrus.FieldLogger) (*Scheduler, error) {
	if logger == nil {
		logger = svc.Logger
	}
	s := &Scheduler{
		Service: svc,
		Logger:  logger.WithField("component", "alerts"),
		Now:     time.Now,
		cron:    cron.New(),
		spec:    spec,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, &generic.ConfigError{Field: "alerts.schedule", Value: spec, Err: err}
	}
	return s, nil
}

// Start begins the cron loop in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.Logger.WithField("schedule", s.spec).Info("alert scheduler started")
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.Logger.Info("alert scheduler stopped")
}

// NextRun returns when the job fires next. Zero until Start.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce checks every user now and records the run.
func (s *Scheduler) RunOnce(ctx context.Context) Run {
	now := s.Now()
	run := Run{
		ID:        uuid.NewString(),
		StartedAt: now,
		Today:     s.Service.Today(now),
		Alerts:    []Alert{},
	}
	log := s.Logger.WithField("run_id", run.ID)

	users, err := s.Service.Store.ListUsers(ctx)
	if err != nil {
		log.WithError(err).Error("failed to list users")
		run.Errors = append(run.Errors, fmt.Sprintf("list users: %v", err))
	}
	run.Users = len(users)

	for _, userID := range users {
		forecast, err := s.Service.Forecast(ctx, userID, service.Options{Today: run.Today})
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("forecast failed")
			run.Errors = append(run.Errors, fmt.Sprintf("%s: %v", userID, err))
			continue
		}
		run.Alerts = append(run.Alerts, Evaluate(userID, forecast)...)
	}

	run.FinishedAt = s.Now()
	s.record(run)

	log.WithFields(logrus.Fields{
		"users":  run.Users,
		"alerts": len(run.Alerts),
		"errors": len(run.Errors),
	}).Info("alert run completed")
	return run
}

// Runs returns the recorded runs, newest first.
func (s *Scheduler) Runs() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Run, len(s.runs))
	for i, r := range s.runs {
		out[len(s.runs)-1-i] = r
	}
	return out
}

func (s *Scheduler) record(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)
	if len(s.runs) > MaxRuns {
		s.runs = append([]Run(nil), s.runs[len(s.runs)-MaxRuns:]...)
	}
}

// =============================================================================
// EVALUATION
// =============================================================================

// Evaluate derives the alerts of one forecast: at most one overdraft, at
// most one low-balance alert (for a day before any overdraft), and one per
// bill collision.
func Evaluate(userID string, forecast *cashflow.CalendarData) []Alert {
	var alerts []Alert

	var lowDay, overdraftDay *cashflow.CalendarDay
	for i := range forecast.Days {
		day := &forecast.Days[i]
		if day.Balance.IsNegative() {
			overdraftDay = day
			break
		}
		if lowDay == nil && day.Balance.LessThan(forecast.SafetyBuffer) {
			lowDay = day
		}
	}

	if lowDay != nil {
		alerts = append(alerts, Alert{
			UserID: userID, Kind: KindLowBalance, Date: lowDay.Date, Amount: lowDay.Balance,
			Message: fmt.Sprintf("balance drops to $%s on %s, below the $%s buffer",
				lowDay.Balance, lowDay.Date, forecast.SafetyBuffer),
		})
	}
	if overdraftDay != nil {
		alerts = append(alerts, Alert{
			UserID: userID, Kind: KindOverdraft, Date: overdraftDay.Date, Amount: overdraftDay.Balance,
			Message: fmt.Sprintf("account overdrawn on %s ($%s)", overdraftDay.Date, overdraftDay.Balance),
		})
	}
	for _, c := range forecast.Collisions.Collisions {
		alerts = append(alerts, Alert{
			UserID: userID, Kind: KindCollision, Date: c.Date, Amount: c.TotalAmount,
			Message: fmt.Sprintf("%d bills totaling $%s due on %s (%s)", c.BillCount, c.TotalAmount, c.Date, c.Severity),
		})
	}
	return alerts
}
