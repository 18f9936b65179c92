package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pratik-mahalle/tasknest/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configDirName  = ".tasknest"
	defaultServer  = "http://localhost:8080"
	tokenConfigKey = "auth.token"
)

var (
	cfgFile      string
	outputFormat string
	serverURL    string
	apiClient    *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "tasknest",
	Short: "TaskNest CLI - AI usage quotas and subscriptions",
	Long: `TaskNest CLI talks to the TaskNest API to create accounts, inspect
AI usage quotas and subscription status, buy plans and run the
quota-gated AI task helpers.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		if cmd.Name() == "create" && cmd.Parent() != nil && cmd.Parent().Name() == "account" {
			return initClient()
		}
		return initAuthenticatedClient()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.tasknest/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newQuotaCmd())
	rootCmd.AddCommand(newPlansCmd())
	rootCmd.AddCommand(newCheckoutCmd())
	rootCmd.AddCommand(newAICmd())
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		_ = os.MkdirAll(dir, 0o700)
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TASKNEST")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", defaultServer)
	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func initClient() error {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}

	apiClient = client.NewClient(client.Config{
		BaseURL: url,
	})
	return nil
}

func initAuthenticatedClient() error {
	if err := initClient(); err != nil {
		return err
	}

	token := viper.GetString(tokenConfigKey)
	if token == "" {
		return fmt.Errorf("no account configured. Run 'tasknest account create' first")
	}

	apiClient.SetToken(token)
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	return viper.GetString("output")
}
