package main

import (
	"fmt"

	"github.com/diewo77/go-billing/internal/db"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Long: `Apply the schema using the configured MIGRATIONS mode.

With MIGRATIONS=sql the embedded SQL files are applied to postgres; any
other mode uses gorm AutoMigrate.`,
	RunE: runMigrate,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert SQL migrations (postgres only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		if cfg.Database.Driver != "postgres" {
			return fmt.Errorf("migrate down requires DB_DRIVER=postgres")
		}
		if err := db.RollbackSQLMigrations(cfg.Database.URL(), steps); err != nil {
			return err
		}
		logger.WithComponent("migrate").Info().Int("steps", steps).Msg("migrations reverted")
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to revert")
	migrateCmd.AddCommand(migrateDownCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("migrate")
	dbCfg := cfg.Database
	if dbCfg.Migrations == "off" {
		dbCfg.Migrations = "auto"
	}
	gdb, err := db.Open(dbCfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gdb, dbCfg, log); err != nil {
		return err
	}
	log.Info().Str("mode", dbCfg.Migrations).Msg("migrations completed successfully")
	return nil
}
