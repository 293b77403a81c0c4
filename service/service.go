/*
Package service runs forecasts for stored users.

PURPOSE:
  Glue between persistence and the engine: load a user's records, convert
  them with factory.Builder, apply the configured defaults and generate the
  forecast. The HTTP API, the alert scheduler and the CLI all go through
  this one path so they always agree.

TODAY:
  The engine never reads the clock. Callers read it once at their boundary
  (handler, cron tick, command) and pass it in via Options.Today or
  Service.Today.

USAGE:
  svc := service.New(st, settings, logger)
  forecast, err := svc.Forecast(ctx, "u1", service.Options{Today: svc.Today(time.Now())})

SEE ALSO:
  - factory/builder.go: Record conversion
  - cashflow/forecast.go: Generator
*/
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/store"
)

// ErrNoRecords is returned when a user has nothing stored at all.
var ErrNoRecords = fmt.Errorf("user has no records: %w", generic.ErrNotFound)

// DefaultMaxHorizonDays caps the horizon when Settings.MaxHorizonDays is unset.
const DefaultMaxHorizonDays = 730

// Settings are the forecast defaults applied when a request leaves a field
// unset.
type Settings struct {
	HorizonDays       int
	MaxHorizonDays    int // largest horizon a caller may ask for; 0 means DefaultMaxHorizonDays
	SafetyBuffer      generic.Amount
	SafeToSpendWindow int
	NetTransfers      bool
	Thresholds        cashflow.CollisionThresholds
	Location          *time.Location
	Parallel          bool
}

// DefaultSettings returns a 60-day horizon with a $500 buffer.
func DefaultSettings() Settings {
	return Settings{
		HorizonDays:       60,
		MaxHorizonDays:    DefaultMaxHorizonDays,
		SafetyBuffer:      generic.NewAmountFromInt(500),
		SafeToSpendWindow: cashflow.DefaultSafeToSpendWindow,
		Thresholds:        cashflow.DefaultCollisionThresholds(),
	}
}

// Options override Settings for one forecast. Zero fields use the settings.
type Options struct {
	Today        generic.Date
	HorizonDays  int
	SafetyBuffer *generic.Amount
	NetTransfers *bool
}

// Service generates forecasts from stored records.
type Service struct {
	Store    store.Store
	Settings Settings
	Logger   logrus.FieldLogger
}

// New creates a service. A nil logger discards output.
func New(st store.Store, settings Settings, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = l
	}
	return &Service{Store: st, Settings: settings, Logger: logger}
}

// Today converts a clock reading to the calendar day in the configured
// location.
func (s *Service) Today(now time.Time) generic.Date {
	if s.Settings.Location != nil {
		now = now.In(s.Settings.Location)
	}
	return generic.DateOf(now)
}

// Builder returns the record converter for the configured location.
func (s *Service) Builder() *factory.Builder {
	return &factory.Builder{Location: s.Settings.Location}
}

// Snapshot loads and converts a user's records.
func (s *Service) Snapshot(ctx context.Context, userID string) (cashflow.Snapshot, []cashflow.Warning, error) {
	records, err := store.LoadRecords(ctx, s.Store, userID)
	if err != nil {
		return cashflow.Snapshot{}, nil, err
	}
	if records.IsEmpty() {
		return cashflow.Snapshot{}, nil, ErrNoRecords
	}
	snap, warnings := s.Builder().BuildSnapshot(records)
	return snap, warnings, nil
}

// Forecast generates the forecast of one user. Conversion warnings come
// first in the result's Warnings.
func (s *Service) Forecast(ctx context.Context, userID string, opts Options) (*cashflow.CalendarData, error) {
	snap, buildWarnings, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	log := s.Logger.WithField("user_id", userID)
	for _, w := range buildWarnings {
		log.WithFields(logrus.Fields{"source_id": w.SourceID, "code": w.Code}).Warn(w.Message)
	}

	forecast, err := s.Generate(snap, opts, log)
	if err != nil {
		return nil, err
	}
	forecast.Warnings = append(buildWarnings, forecast.Warnings...)
	return forecast, nil
}

// Generate runs the engine on an already built snapshot. A horizon above
// the configured maximum fails with a ConfigError on "days".
func (s *Service) Generate(snap cashflow.Snapshot, opts Options, log logrus.FieldLogger) (*cashflow.CalendarData, error) {
	if opts.Today.IsZero() {
		return nil, generic.ErrMissingToday
	}
	in := snap.Input(opts.Today, s.Settings.HorizonDays, s.Settings.SafetyBuffer)
	in.SafeToSpendWindow = s.Settings.SafeToSpendWindow
	in.Collisions = s.Settings.Thresholds
	in.NetTransfers = s.Settings.NetTransfers

	if opts.HorizonDays != 0 {
		in.HorizonDays = opts.HorizonDays
	}
	if limit := s.maxHorizonDays(); in.HorizonDays > limit {
		return nil, &generic.ConfigError{
			Field: "days",
			Value: strconv.Itoa(in.HorizonDays),
			Err:   fmt.Errorf("%w: at most %d days", generic.ErrInvalidHorizon, limit),
		}
	}
	if opts.SafetyBuffer != nil {
		in.SafetyBuffer = *opts.SafetyBuffer
	}
	if opts.NetTransfers != nil {
		in.NetTransfers = *opts.NetTransfers
	}
	if log == nil {
		log = s.Logger
	}

	gen := cashflow.Generator{Logger: log, Parallel: s.Settings.Parallel}
	return gen.Generate(in)
}

func (s *Service) maxHorizonDays() int {
	if s.Settings.MaxHorizonDays > 0 {
		return s.Settings.MaxHorizonDays
	}
	return DefaultMaxHorizonDays
}

// LoadDemo replaces a user's records with a demo household.
func (s *Service) LoadDemo(ctx context.Context, demoID, userID string, today generic.Date) (factory.Records, error) {
	records, err := factory.DemoRecords(demoID, userID, today)
	if err != nil {
		return factory.Records{}, err
	}
	if err := s.ClearUser(ctx, userID); err != nil {
		return factory.Records{}, err
	}
	if err := store.SaveRecords(ctx, s.Store, userID, records); err != nil {
		return factory.Records{}, err
	}
	s.Logger.WithFields(logrus.Fields{"demo": demoID, "user_id": userID}).Info("demo household loaded")
	return records, nil
}

// ClearUser deletes every record of a user.
func (s *Service) ClearUser(ctx context.Context, userID string) error {
	records, err := store.LoadRecords(ctx, s.Store, userID)
	if err != nil {
		return err
	}
	var errs []error
	for _, r := range records.Accounts {
		errs = append(errs, s.Store.DeleteAccount(ctx, userID, r.ID))
	}
	for _, r := range records.Income {
		errs = append(errs, s.Store.DeleteIncome(ctx, userID, r.ID))
	}
	for _, r := range records.Bills {
		errs = append(errs, s.Store.DeleteBill(ctx, userID, r.ID))
	}
	for _, r := range records.Transfers {
		errs = append(errs, s.Store.DeleteTransfer(ctx, userID, r.ID))
	}
	return errors.Join(errs...)
}
