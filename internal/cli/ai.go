package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Run quota-gated AI task helpers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "categorize <task text>",
		Short: "Categorize a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient.Categorize(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return explainError(err)
			}
			if structured() {
				return printOutput(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n(remaining: %s)\n", res.Category, formatLimit(res.Quota.Remaining))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "suggest <task text>",
		Short: "Suggest follow-up tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient.Suggest(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return explainError(err)
			}
			if structured() {
				return printOutput(cmd.OutOrStdout(), res)
			}
			for _, s := range res.Suggestions {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", s)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "(remaining: %s)\n", formatLimit(res.Quota.Remaining))
			return nil
		},
	})

	return cmd
}
