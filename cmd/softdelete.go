package cmd

import (
	"context"
	"fmt"

	"github.com/barretodotcom/inmocrm/db"
	"github.com/barretodotcom/inmocrm/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var softDeleteCmd = &cobra.Command{
	Use:     "softdelete",
	Aliases: []string{"sd"},
	Short:   "Inspect and change soft-deleted records",
}

var softDeleteReportCmd = &cobra.Command{
	Use:   "report [table...]",
	Short: "Active vs deleted counts, cross-checked with a filtered count",
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := args
		if len(tables) == 0 {
			tables = db.SoftDeleteTables()
		}
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			inconsistent := 0
			for _, t := range tables {
				sum, err := s.SoftDeleteSummary(ctx, t)
				if err != nil {
					log.Error("soft delete summary", zap.String("table", t), zap.Error(err))
					inconsistent++
					continue
				}
				report.SoftDelete(cmd.OutOrStdout(), sum)
				if !sum.Consistent {
					inconsistent++
				}
			}
			if inconsistent > 0 {
				return fmt.Errorf("%d of %d tables failed or are inconsistent", inconsistent, len(tables))
			}
			return nil
		})
	},
}

var softDeleteDeleteCmd = &cobra.Command{
	Use:   "delete <table> <id>",
	Short: "Mark a record as deleted",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			if err := s.SoftDelete(ctx, args[0], args[1]); err != nil {
				return err
			}
			log.Info("record deleted", zap.String("table", args[0]), zap.String("id", args[1]))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s deleted\n", args[0], args[1])
			return nil
		})
	},
}

var softDeleteRestoreCmd = &cobra.Command{
	Use:   "restore <table> <id>",
	Short: "Clear the deleted marker of a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			if err := s.Restore(ctx, args[0], args[1]); err != nil {
				return err
			}
			log.Info("record restored", zap.String("table", args[0]), zap.String("id", args[1]))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s restored\n", args[0], args[1])
			return nil
		})
	},
}

func init() {
	softDeleteCmd.AddCommand(softDeleteReportCmd, softDeleteDeleteCmd, softDeleteRestoreCmd)
	rootCmd.AddCommand(softDeleteCmd)
}
