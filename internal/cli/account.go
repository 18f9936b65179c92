package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the TaskNest account",
	}

	cmd.AddCommand(newAccountCreateCmd())
	cmd.AddCommand(newAccountShowCmd())

	return cmd
}

func newAccountCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a free account and store its tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := apiClient.CreateAccount(cmd.Context())
			if err != nil {
				return err
			}

			viper.Set(tokenConfigKey, created.Tokens.AccessToken)
			viper.Set("auth.refresh_token", created.Tokens.RefreshToken)
			viper.Set("account_id", created.Account.ID)
			if err := writeConfig(); err != nil {
				return fmt.Errorf("account %s created but tokens could not be saved: %w", created.Account.ID, err)
			}

			if structured() {
				return printOutput(cmd.OutOrStdout(), created.Account)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created on the %s plan\n", created.Account.ID, created.Account.Tier)
			return nil
		},
	}
}

func newAccountShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored account record",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := apiClient.Me(cmd.Context())
			if err != nil {
				return err
			}
			if structured() {
				return printOutput(cmd.OutOrStdout(), a)
			}

			t := NewTable("ID", "TIER", "STATUS", "DAILY", "MONTHLY", "FROZEN")
			t.writer = cmd.OutOrStdout()
			t.AddRow(a.ID, a.Tier, a.SubscriptionStatus,
				fmt.Sprint(a.DailyUsageCount), fmt.Sprint(a.MonthlyUsageCount), fmt.Sprint(a.FrozenCredits))
			t.Render()
			return nil
		},
	}
}
