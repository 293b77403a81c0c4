package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/factory"
)

func newDemoCmd(a *app) *cobra.Command {
	var (
		flagScenario string
		flagUser     string
		flagList     bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Seed a demo household into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if flagList || flagScenario == "" {
				t := Table{Title: "Demo Households", Headers: []string{"ID", "Name", "Description"}}
				for _, h := range factory.DemoHouseholds() {
					t.Rows = append(t.Rows, []string{h.ID, h.Name, h.Description})
				}
				write(out, RenderTable(t))
				if !flagList {
					return fmt.Errorf("--scenario is required")
				}
				return nil
			}

			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			records, err := s.svc.LoadDemo(cmd.Context(), flagScenario, flagUser, s.today)
			if err != nil {
				return err
			}
			write(out, fmt.Sprintf("  Loaded %s for user %q: %d accounts, %d income, %d bills, %d transfers\n",
				flagScenario, flagUser,
				len(records.Accounts), len(records.Income), len(records.Bills), len(records.Transfers)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagScenario, "scenario", "s", "", "Demo household ID")
	cmd.Flags().StringVarP(&flagUser, "user", "u", "demo", "User ID to load into")
	cmd.Flags().BoolVarP(&flagList, "list", "l", false, "List demo households")
	return cmd
}
