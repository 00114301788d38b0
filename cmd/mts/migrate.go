package main

import (
	"github.com/spf13/cobra"

	"github.com/campus-mts/mts/internal/persistence"
)

var migrateRollback bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		return persistence.RunMigrations(cmd.Context(), cfg.Postgres.DSN, migrateRollback, logger)
	},
}

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration")
}
