package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quizlet-service/internal/config"
	"quizlet-service/internal/infra/postgres"
	"quizlet-service/internal/logging"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	db, err := postgres.Open(cfg.Postgres.URL, cfg.Postgres.Driver)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	log.WithField("driver", cfg.Postgres.Driver).Info("migrations applied")
	return nil
}
