package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show subscription and usage summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := apiClient.Subscription(cmd.Context())
			if err != nil {
				return err
			}
			if structured() {
				return printOutput(cmd.OutOrStdout(), status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "TaskNest Subscription")
			fmt.Fprintln(out, strings.Repeat("=", 40))
			fmt.Fprintf(out, "  Plan:          %s\n", formatTier(status.Tier, status.IsActive))
			if status.IsActive {
				fmt.Fprintf(out, "  Renews/ends:   %s (%d days left)\n", formatTime(status.SubscriptionEndDate), status.DaysRemaining)
			}
			fmt.Fprintf(out, "  Daily usage:   %s (resets %s)\n",
				formatUsage(status.DailyUsage, status.DailyLimit), formatTime(&status.DailyResetAt))
			fmt.Fprintf(out, "  Monthly usage: %s\n", formatUsage(status.MonthlyUsage, status.MonthlyLimit))
			if status.FrozenCredits > 0 {
				fmt.Fprintf(out, "  Frozen:        %d credits (restored on pro upgrade)\n", status.FrozenCredits)
			}
			if status.RestoredCredits > 0 {
				fmt.Fprintf(out, "  Restored:      %d credits\n", status.RestoredCredits)
			}
			return nil
		},
	}
}

func newQuotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Check whether the next AI request is allowed",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := apiClient.Quota(cmd.Context())
			if err != nil {
				return err
			}
			if structured() {
				return printOutput(cmd.OutOrStdout(), q)
			}

			t := NewTable("TIER", "POOL", "USED", "REMAINING", "RESETS", "ALLOWED")
			t.writer = cmd.OutOrStdout()
			t.AddRow(q.Tier, q.Pool, formatUsage(q.Used, q.Limit), formatLimit(q.Remaining),
				formatTime(q.ResetAt), fmt.Sprint(q.Allowed))
			t.Render()
			return nil
		},
	}
}
