package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/service"
)

func newForecastCmd(a *app) *cobra.Command {
	var (
		flagUser   string
		flagDays   int
		flagBuffer float64
		flagAll    bool
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Day-by-day balance forecast",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !flagAll {
				if err := requireUser(flagUser); err != nil {
					return err
				}
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			opts, err := forecastOptions(s.today, flagDays, flagBuffer)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flagAll {
				return renderAllUsers(cmd, out, s, opts)
			}
			forecast, err := s.svc.Forecast(cmd.Context(), flagUser, opts)
			if err != nil {
				return err
			}
			renderForecast(out, flagUser, forecast)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagUser, "user", "u", "", "User ID")
	cmd.Flags().IntVarP(&flagDays, "days", "n", 0, "Horizon in days (default from config)")
	cmd.Flags().Float64VarP(&flagBuffer, "buffer", "b", 0, "Safety buffer (default from config)")
	cmd.Flags().BoolVar(&flagAll, "all", false, "Summarize every user instead of one")
	return cmd
}

func renderForecast(w io.Writer, userID string, f *cashflow.CalendarData) {
	write(w, "\n")
	write(w, RenderTitle(fmt.Sprintf("Cash-Flow Forecast  |  %s", userID)))
	write(w, "\n\n")

	write(w, RenderKeyValues([][2]string{
		{"Period", f.Period().String()},
		{"Starting balance", FormatMoney(f.StartingBalance)},
		{"Safety buffer", FormatMoney(f.SafetyBuffer)},
		{"Lowest balance", FormatMoney(f.LowestBalance) + " on " + FormatDate(f.LowestBalanceDay)},
		{"Safe to spend", FormatMoney(f.SafeToSpend)},
	}))
	write(w, "\n")

	t := Table{
		Title:   "Daily Balances",
		Headers: []string{"Date", "Income", "Bills", "Transfers", "Balance", "Status", "Events"},
	}
	for _, d := range f.Days {
		t.Rows = append(t.Rows, []string{
			d.Date.String(),
			moneyOrBlank(d.TotalIncome()),
			moneyOrBlank(d.TotalBills()),
			moneyOrBlank(d.TransferNet),
			FormatMoney(d.Balance),
			string(d.Status),
			Truncate(eventNames(d), 32),
		})
		t.Styles = append(t.Styles, []*lipgloss.Style{
			4: StatusStyle(d.Status),
			5: StatusStyle(d.Status),
		})
	}
	write(w, RenderTable(t))

	if f.Collisions.TotalCollisions > 0 {
		write(w, "\n")
		write(w, renderCollisions(f.Collisions))
	}
	renderWarnings(w, f.Warnings)
}

func renderAllUsers(cmd *cobra.Command, w io.Writer, s *session, opts service.Options) error {
	users, err := s.svc.Store.ListUsers(cmd.Context())
	if err != nil {
		return err
	}

	t := Table{
		Title:   "All Users",
		Headers: []string{"User", "Starting", "Lowest", "Lowest On", "Safe To Spend", "Collisions"},
	}
	for _, u := range users {
		f, err := s.svc.Forecast(cmd.Context(), u, opts)
		if err != nil {
			t.Rows = append(t.Rows, []string{u, "error: " + Truncate(err.Error(), 40), "", "", "", ""})
			t.Styles = append(t.Styles, []*lipgloss.Style{1: &warnStyle})
			continue
		}
		t.Rows = append(t.Rows, []string{
			u,
			FormatMoney(f.StartingBalance),
			FormatMoney(f.LowestBalance),
			FormatDate(f.LowestBalanceDay),
			FormatMoney(f.SafeToSpend),
			fmt.Sprintf("%d", f.Collisions.TotalCollisions),
		})
		t.Styles = append(t.Styles, []*lipgloss.Style{2: StatusStyle(cashflow.Classify(f.LowestBalance, f.SafetyBuffer))})
	}

	write(w, "\n")
	write(w, RenderTitle("Cash-Flow Forecast  |  all users"))
	write(w, "\n\n")
	if len(users) == 0 {
		write(w, "  "+mutedStyle.Render("No users found. Load one with: cashflow demo --scenario steady-salary")+"\n")
		return nil
	}
	write(w, RenderTable(t))
	return nil
}

func renderWarnings(w io.Writer, ws []cashflow.Warning) {
	if len(ws) == 0 {
		return
	}
	write(w, "\n")
	write(w, "  "+headerStyle.Render("Data Warnings")+"\n")
	for _, warn := range ws {
		write(w, RenderWarning(warn.String())+"\n")
	}
}

func eventNames(d cashflow.CalendarDay) string {
	var names []string
	for _, o := range d.Income {
		names = append(names, "+"+label(o))
	}
	for _, o := range d.Bills {
		names = append(names, "-"+label(o))
	}
	for _, o := range d.Transfers {
		names = append(names, "~"+label(o))
	}
	return strings.Join(names, ", ")
}

func label(o cashflow.Occurrence) string {
	if o.Name != "" {
		return o.Name
	}
	return o.SourceID
}

func moneyOrBlank(a generic.Amount) string {
	if a.IsZero() {
		return ""
	}
	return FormatMoney(a)
}
