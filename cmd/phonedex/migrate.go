package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	dbfs "github.com/phonedex/phonedex/db"
	"github.com/phonedex/phonedex/internal/config"
	"github.com/phonedex/phonedex/internal/db"
	"github.com/phonedex/phonedex/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <up|down|version|force N>",
		Short: "Apply or roll back database migrations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Init(cfg.Log.Level, cfg.Log.Format)

			migrations, err := fs.Sub(dbfs.MigrationsFS, "migrations")
			if err != nil {
				return fmt.Errorf("migrations fs: %w", err)
			}
			return db.RunMigrate(logger.L, cfg.Postgres, migrations, args[0], args[1:])
		},
	}
}
