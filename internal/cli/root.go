package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "fintrack",
	Short:         "Personal finance tracker",
	Long:          "Record expenses, keep a budget and review spending from a small web app backed by SQLite.",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to a TOML config file (default $FINTRACK_CONFIG)")
	rootCmd.AddCommand(serveCmd, migrateCmd, alertsCmd)
}
