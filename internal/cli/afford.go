package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/scenario"
)

func newAffordCmd(a *app) *cobra.Command {
	var (
		flagUser    string
		flagName    string
		flagAmount  float64
		flagDate    string
		flagMonthly bool
		flagDays    int
		flagBuffer  float64
	)

	cmd := &cobra.Command{
		Use:   "afford",
		Short: "Check whether a hypothetical expense is affordable",
		Example: `  cashflow afford --user demo --amount 450 --date 2025-03-12
  cashflow afford --user demo --amount 89 --monthly`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(flagUser); err != nil {
				return err
			}
			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			exp := scenario.Expense{Name: flagName, Amount: flagAmount, Frequency: generic.FreqOneTime}
			if flagMonthly {
				exp.Frequency = generic.FreqMonthly
			}
			if flagDate != "" {
				exp.Date, err = s.svc.Builder().ParseDate(flagDate)
				if err != nil {
					return err
				}
			}

			opts, err := forecastOptions(s.today, flagDays, flagBuffer)
			if err != nil {
				return err
			}
			forecast, err := s.svc.Forecast(cmd.Context(), flagUser, opts)
			if err != nil {
				return err
			}

			result, preview := scenario.ComputeScenario(forecast, exp)
			renderScenario(cmd.OutOrStdout(), exp, result, preview)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagUser, "user", "u", "", "User ID")
	cmd.Flags().StringVar(&flagName, "name", "", "Label for the expense")
	cmd.Flags().Float64VarP(&flagAmount, "amount", "a", 0, "Expense amount")
	cmd.Flags().StringVarP(&flagDate, "date", "d", "", "Date of the (first) expense (default: first forecast day)")
	cmd.Flags().BoolVar(&flagMonthly, "monthly", false, "Repeat the expense monthly")
	cmd.Flags().IntVarP(&flagDays, "days", "n", 0, "Horizon in days (default from config)")
	cmd.Flags().Float64VarP(&flagBuffer, "buffer", "b", 0, "Safety buffer (default from config)")
	return cmd
}

func renderScenario(w io.Writer, exp scenario.Expense, r scenario.Result, p scenario.Preview) {
	title := "Can I afford this?"
	if exp.Name != "" {
		title += "  |  " + exp.Name
	}
	write(w, "\n")
	write(w, RenderTitle(title))
	write(w, "\n\n")

	if !r.Evaluated {
		write(w, RenderWarning("Cannot evaluate: "+r.Reason)+"\n")
		return
	}

	verdict := statusStyles[cashflow.StatusGreen].Render("YES")
	if !r.CanAfford {
		verdict = statusStyles[cashflow.StatusRed].Render("NO")
	}
	pairs := [][2]string{
		{"Verdict", verdict},
		{"Reason", r.Reason},
		{"Total extra", FormatMoney(r.TotalExtra)},
		{"Lowest balance", FormatMoney(r.LowestBalance) + " on " + FormatDate(r.LowestBalanceDay)},
		{"Baseline lowest", FormatMoney(r.BaselineLowest)},
	}
	if r.FirstProblemDay != nil {
		pairs = append(pairs, [2]string{"First problem day", r.FirstProblemDay.String()})
	}
	write(w, RenderKeyValues(pairs))
	write(w, "\n")

	t := Table{
		Title:   "Preview around " + FormatDate(p.Center),
		Headers: []string{"Date", "Baseline", "Expense", "With Expense", "Status"},
	}
	for _, d := range p.Days {
		expense := ""
		if !d.Extra.IsZero() {
			expense = FormatMoney(d.Extra.Neg())
		}
		t.Rows = append(t.Rows, []string{
			d.Date.String(),
			FormatMoney(d.Baseline),
			expense,
			FormatMoney(d.Scenario),
			string(d.Status),
		})
		t.Styles = append(t.Styles, []*lipgloss.Style{3: StatusStyle(d.Status), 4: StatusStyle(d.Status)})
	}
	write(w, RenderTable(t))
}
