// Package cmd holds the inmocrm command line: maintenance commands for the
// back-office database and the admin API server.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/barretodotcom/inmocrm/config"
	"github.com/barretodotcom/inmocrm/db"
	"github.com/barretodotcom/inmocrm/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile string
	timeout time.Duration

	cfg *config.Config
	log *zap.Logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "inmocrm",
	Short: "Back-office maintenance for the real-estate CRM",
	Long: `inmocrm runs diagnostics and maintenance against the back-office database
(properties, clients, advisors, appointments, payments, service inquiries, settings)
and serves the admin API.

Configuration comes from the environment or a .env file:
  DATABASE_URL, JWT_SECRET, API_URL, API_KEY, HTTP_ADDR, LOG_LEVEL, APP_ENV`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if envFile != "" {
			cfg, err = config.LoadFile(envFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		log = logger.New(logger.Config{
			Level:       cfg.LogLevel,
			Development: cfg.Development(),
			Command:     cmd.CommandPath(),
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load configuration from this file instead of ./.env")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for store commands")
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// withStore opens the store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s *db.Store) error) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	s, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("store unavailable", zap.Error(err))
		return err
	}
	defer s.Close()

	if err := fn(ctx, s); err != nil {
		log.Error("command failed", zap.Error(err))
		return err
	}
	return nil
}
