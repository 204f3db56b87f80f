package cli

import (
	"github.com/spf13/cobra"

	"fintrack/internal/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database if needed, apply migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		LoadEnvFile()
		cfg, err := LoadAndValidateConfig(flagConfig)
		if err != nil {
			return err
		}
		logger := SetupLogger(cfg.LogLevel)

		repo, err := InitSQLite(logger, cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		logger.Info("Migrations applied", "path", cfg.SQLiteDBPath, log.FieldOperation, log.OpMigrate)
		return repo.Close()
	},
}
