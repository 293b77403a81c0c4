package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/cashflow"
)

func newCollisionsCmd(a *app) *cobra.Command {
	var (
		flagUser string
		flagDays int
	)

	cmd := &cobra.Command{
		Use:   "collisions",
		Short: "Days where several bills fall due together",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(flagUser); err != nil {
				return err
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			opts, err := forecastOptions(s.today, flagDays, 0)
			if err != nil {
				return err
			}
			forecast, err := s.svc.Forecast(cmd.Context(), flagUser, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			write(out, "\n")
			write(out, RenderTitle(fmt.Sprintf("Bill Collisions  |  %s", flagUser)))
			write(out, "\n\n")
			if forecast.Collisions.TotalCollisions == 0 {
				write(out, "  "+mutedStyle.Render("No bill collisions in "+forecast.Period().String())+"\n")
				return nil
			}
			write(out, renderCollisions(forecast.Collisions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagUser, "user", "u", "", "User ID")
	cmd.Flags().IntVarP(&flagDays, "days", "n", 0, "Horizon in days (default from config)")
	return cmd
}

func renderCollisions(s cashflow.CollisionSummary) string {
	t := Table{
		Title: fmt.Sprintf("Bill Collisions (%d: %d critical, %d warning)",
			s.TotalCollisions, s.CriticalCount, s.WarningCount),
		Headers: []string{"Date", "Bills", "Total", "Severity", "Names"},
	}
	for _, c := range s.Collisions {
		names := make([]string, len(c.Bills))
		for i, b := range c.Bills {
			names[i] = label(b)
		}
		t.Rows = append(t.Rows, []string{
			c.Date.String(),
			fmt.Sprintf("%d", c.BillCount),
			FormatMoney(c.TotalAmount),
			string(c.Severity),
			Truncate(strings.Join(names, ", "), 40),
		})
		style := &warnStyle
		if c.Severity == cashflow.SeverityCritical {
			style = StatusStyle(cashflow.StatusRed)
		}
		t.Styles = append(t.Styles, []*lipgloss.Style{3: style})
	}
	out := RenderTable(t)
	if s.HighestAmount != nil {
		out += RenderKeyValues([][2]string{{
			"Largest",
			FormatMoney(s.HighestAmount.TotalAmount) + " on " + s.HighestAmount.Date.String(),
		}})
	}
	return out
}
