package alerts_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/alerts"
	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/service"
	"github.com/warp/cashflow-engine/store"
	"github.com/warp/cashflow-engine/store/memory"
)

var clock = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.Local)

func newScheduler(t *testing.T, users map[string]factory.Records) *alerts.Scheduler {
	t.Helper()
	st := memory.New()
	for id, r := range users {
		require.NoError(t, store.SaveRecords(context.Background(), st, id, r))
	}
	svc := service.New(st, service.DefaultSettings(), nil)
	s, err := alerts.NewScheduler(svc, "0 7 * * *", nil)
	require.NoError(t, err)
	s.Now = func() time.Time { return clock }
	return s
}

func user(balance float64, bills ...factory.BillRecord) factory.Records {
	return factory.Records{
		Accounts: []factory.AccountRecord{{ID: "chk", CurrentBalance: factory.Float(balance)}},
		Bills:    bills,
	}
}

func bill(id string, amount float64, due string) factory.BillRecord {
	return factory.BillRecord{ID: id, Amount: factory.Float(amount), Frequency: "one_time", DueDate: due}
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	svc := service.New(memory.New(), service.DefaultSettings(), nil)
	_, err := alerts.NewScheduler(svc, "whenever", nil)

	var cfgErr *generic.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRunOnce_RecordsAlerts(t *testing.T) {
	// GIVEN: One healthy user, one who dips below the buffer and then
	// overdraws, and one with two bills on the same day
	s := newScheduler(t, map[string]factory.Records{
		"healthy": user(5000),
		"tight": user(1000,
			bill("car", 700, "2025-03-03"),
			bill("tax", 600, "2025-03-10"),
		),
		"crowded": user(9000,
			bill("rent", 1500, "2025-03-15"),
			bill("phone", 80, "2025-03-15"),
		),
	})

	// WHEN: Running the check
	run := s.RunOnce(context.Background())

	// THEN: Each problem is reported once, for the day it starts
	assert.Equal(t, 3, run.Users)
	assert.Empty(t, run.Errors)
	assert.Equal(t, "2025-03-01", run.Today.String())

	byUser := map[string][]alerts.Alert{}
	for _, a := range run.Alerts {
		byUser[a.UserID] = append(byUser[a.UserID], a)
	}
	assert.Empty(t, byUser["healthy"])

	require.Len(t, byUser["tight"], 2)
	assert.Equal(t, alerts.KindLowBalance, byUser["tight"][0].Kind)
	assert.Equal(t, "2025-03-03", byUser["tight"][0].Date.String())
	assert.Equal(t, "300.00", byUser["tight"][0].Amount.String())
	assert.Equal(t, alerts.KindOverdraft, byUser["tight"][1].Kind)
	assert.Equal(t, "2025-03-10", byUser["tight"][1].Date.String())
	assert.Equal(t, "-300.00", byUser["tight"][1].Amount.String())

	require.Len(t, byUser["crowded"], 1)
	assert.Equal(t, alerts.KindCollision, byUser["crowded"][0].Kind)
	assert.Equal(t, "1580.00", byUser["crowded"][0].Amount.String())
	assert.Contains(t, byUser["crowded"][0].Message, "critical")
}

func TestRunOnce_UserErrorDoesNotStopRun(t *testing.T) {
	// A user whose only account has no balance cannot be forecast.
	s := newScheduler(t, map[string]factory.Records{
		"ok":      user(5000),
		"nocash": {
			Accounts: []factory.AccountRecord{{ID: "legacy"}},
			Bills:    []factory.BillRecord{bill("rent", 100, "2025-03-05")},
		},
		"overdue": user(-50),
	})

	run := s.RunOnce(context.Background())

	assert.Equal(t, 3, run.Users)
	require.Len(t, run.Errors, 1)
	assert.Contains(t, run.Errors[0], "nocash")
	require.Len(t, run.Alerts, 1)
	assert.Equal(t, alerts.KindOverdraft, run.Alerts[0].Kind)
}

func TestRuns_NewestFirstAndBounded(t *testing.T) {
	s := newScheduler(t, nil)

	var last alerts.Run
	for i := 0; i < alerts.MaxRuns+5; i++ {
		last = s.RunOnce(context.Background())
	}

	runs := s.Runs()
	assert.Len(t, runs, alerts.MaxRuns)
	assert.Equal(t, last.ID, runs[0].ID)
}

func TestStartStop(t *testing.T) {
	s := newScheduler(t, nil)
	s.Start()
	assert.False(t, s.NextRun().IsZero())
	s.Stop()
}
