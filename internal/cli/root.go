package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/internal/config"
	"github.com/warp/cashflow-engine/service"
)

// app carries the global flags and the state shared by every command.
type app struct {
	flagConfig  string
	flagDB      string
	flagDriver  string
	flagToday   string
	flagVerbose bool

	// Now is the clock; overridden in tests.
	Now func() time.Time
}

// NewRootCommand builds the command tree. Each call returns fresh flag
// state.
func NewRootCommand() *cobra.Command {
	a := &app{Now: time.Now}

	root := &cobra.Command{
		Use:           "cashflow",
		Short:         "Cash-flow forecasting CLI",
		Long:          "Forecast daily balances, spot bill collisions and test \"can I afford this?\" scenarios.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&a.flagConfig, "config", "c", "cashflow.toml", "Path to TOML config file")
	root.PersistentFlags().StringVar(&a.flagDB, "db", "", "Database DSN or SQLite path (overrides config)")
	root.PersistentFlags().StringVar(&a.flagDriver, "driver", "", "Database driver: sqlite3, postgres or memory (overrides config)")
	root.PersistentFlags().StringVar(&a.flagToday, "today", "", "Forecast start date YYYY-MM-DD (default: today)")
	root.PersistentFlags().BoolVarP(&a.flagVerbose, "verbose", "v", false, "Log engine details to stderr")

	root.AddCommand(
		newForecastCmd(a),
		newAffordCmd(a),
		newCollisionsCmd(a),
		newDemoCmd(a),
	)
	return root
}

// Execute is the main entry point called from main.go.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "  Error: %v\n", err)
		os.Exit(1)
	}
}

// session is an opened service plus its cleanup.
type session struct {
	svc   *service.Service
	today generic.Date
	close func() error
}

// open is the shared setup path used by all commands: config, logger,
// store and service.
func (a *app) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(a.flagConfig)
	if err != nil {
		return nil, err
	}
	if a.flagDriver != "" {
		cfg.Database.Driver = a.flagDriver
	}
	if a.flagDB != "" {
		cfg.Database.DSN = a.flagDB
	}
	// The CLI never schedules alerts; skip validating the schedule.
	cfg.Alerts.Enabled = false
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := config.NewLogger(cfg.Log)
	logger.SetOutput(cmd.ErrOrStderr())
	if a.flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.ErrorLevel)
	}

	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	st, err := config.OpenStore(cfg.Database)
	if err != nil {
		return nil, err
	}

	svc := service.New(st, settings, logger)
	today := svc.Today(a.Now())
	if a.flagToday != "" {
		today, err = svc.Builder().ParseDate(a.flagToday)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("invalid --today: %w", err)
		}
	}
	return &session{svc: svc, today: today, close: st.Close}, nil
}

// forecastOptions converts the --days and --buffer flags.
func forecastOptions(today generic.Date, days int, buffer float64) (service.Options, error) {
	opts := service.Options{Today: today, HorizonDays: days}
	if buffer != 0 {
		amt, err := generic.AmountFromFloat(buffer)
		if err != nil {
			return opts, fmt.Errorf("invalid --buffer: %w", err)
		}
		opts.SafetyBuffer = &amt
	}
	return opts, nil
}

func requireUser(user string) error {
	if user == "" {
		return errors.New("--user is required")
	}
	return nil
}

func write(w io.Writer, s string) {
	fmt.Fprint(w, s)
}
