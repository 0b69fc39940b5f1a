package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/idea2sns-backend/internal/app"
	"github.com/yungbote/idea2sns-backend/internal/data/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadBaseConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			cfg.Database.AutoMigrate = false
			svc, err := app.OpenDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := db.AutoMigrateAll(svc.DB()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
