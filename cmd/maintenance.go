package cmd

import (
	"context"
	"fmt"

	"github.com/barretodotcom/inmocrm/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Read or toggle the maintenance_mode setting",
}

var maintenanceGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print whether maintenance mode is on",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			on, err := s.Maintenance(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "maintenance: %s\n", onOff(on))
			return nil
		})
	},
}

func setMaintenance(enabled bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			if err := s.SetMaintenance(ctx, enabled); err != nil {
				return err
			}
			log.Info("maintenance toggled", zap.Bool("enabled", enabled))
			fmt.Fprintf(cmd.OutOrStdout(), "maintenance: %s\n", onOff(enabled))
			return nil
		})
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func init() {
	maintenanceCmd.AddCommand(
		maintenanceGetCmd,
		&cobra.Command{Use: "on", Short: "Enable maintenance mode", RunE: setMaintenance(true)},
		&cobra.Command{Use: "off", Short: "Disable maintenance mode", RunE: setMaintenance(false)},
	)
	rootCmd.AddCommand(maintenanceCmd)
}
