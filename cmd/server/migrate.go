package main

import (
	"fmt"

	"payment-relay/internal/config"
	"payment-relay/internal/database"
	"payment-relay/pkg/logging"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the transactions table",
		Long: `Create or update the transactions table in the SQL store.

Uses DATABASE_URL when set and the SQLite file at SQLITE_PATH otherwise.
Only meaningful for STORE_DRIVER=sql; the serve command also migrates on start.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreDriverSQL {
		return fmt.Errorf("migrate requires STORE_DRIVER=%s, got %q", config.StoreDriverSQL, cfg.StoreDriver)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	conns := &database.Connections{DB: db}
	defer conns.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logging.Infof("Migration complete")
	return nil
}
