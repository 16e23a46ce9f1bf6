package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"weekly-agenda-api/internal/app"
	"weekly-agenda-api/internal/config"
	"weekly-agenda-api/internal/metrics"
)

const connectTimeout = 15 * time.Second

var (
	serverHost  string
	serverPort  int
	skipMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server.

The server connects to the configured store, applies pending migrations
(unless --skip-migrate), and serves until SIGINT or SIGTERM.

Examples:
  # Start with configuration from the environment
  server serve

  # Listen on a specific host and port
  server serve --host 127.0.0.1 --port 9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 3000)")
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations at startup")
}

func runServer(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting server")
	metrics.AppInfo.WithLabelValues(Version, cfg.Database.Driver).Set(1)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	st, err := app.OpenStore(connectCtx, cfg.Database)
	if err != nil {
		return fmt.Errorf("store connection failed: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("connected to store")

	if !skipMigrate {
		if err := st.Migrate(connectCtx); err != nil {
			_ = st.Close(context.Background())
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Msg("migrations applied")
	}

	return app.New(ctx, cfg, logger, st).Run(ctx)
}
