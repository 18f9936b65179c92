package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := apiClient.Plans(cmd.Context())
			if err != nil {
				return err
			}
			if structured() {
				return printOutput(cmd.OutOrStdout(), plans)
			}

			t := NewTable("PLAN", "NAME", "DAILY", "MONTHLY", "DAYS", "CURRENT")
			t.writer = cmd.OutOrStdout()
			for _, p := range plans {
				current := ""
				if p.IsCurrent {
					current = "*"
				}
				t.AddRow(p.ID, p.Name, formatLimit(p.DailyLimit), formatLimit(p.MonthlyLimit),
					fmt.Sprint(p.PeriodDays), current)
			}
			t.Render()
			return nil
		},
	}
}

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "checkout <basic|pro>",
		Short:     "Open a payment page for a plan",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"basic", "pro"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := apiClient.Checkout(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if structured() {
				return printOutput(cmd.OutOrStdout(), sess)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Complete the payment at:\n  %s\n", sess.URL)
			return nil
		},
	}
}
