package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"weekly-agenda-api/internal/app"
	"weekly-agenda-api/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply store migrations and exit",
	Long: `Apply pending migrations: SQL migrations for PostgreSQL, indexes for
MongoDB. Running it again is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
		defer cancel()
		st, err := app.OpenStore(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("store connection failed: %w", err)
		}
		defer st.Close(context.Background())

		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Str("driver", cfg.Database.Driver).Msg("migrations applied")
		return nil
	},
}
