package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/barretodotcom/inmocrm/api/utils"
	"github.com/barretodotcom/inmocrm/db"
	"github.com/barretodotcom/inmocrm/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Diagnostics against the configured database",
}

var checkTablesCmd = &cobra.Command{
	Use:   "tables [name...]",
	Short: "Report existence and row count per table",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if len(names) == 0 {
			names = db.DefaultTables
		}
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			statuses := s.CheckTables(ctx, names)
			report.Tables(cmd.OutOrStdout(), statuses)
			for _, st := range statuses {
				if st.Err != "" {
					log.Warn("table check failed", zap.String("table", st.Name), zap.String("err", st.Err))
				}
			}
			return nil
		})
	},
}

var idTables = []string{"properties", "clients", "advisors"}

var checkIDsCmd = &cobra.Command{
	Use:   "ids",
	Short: "Detect whether primary keys are UUIDs or integers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			samples := make([]report.IDSample, 0, len(idTables))
			for _, t := range idTables {
				v, err := s.SampleID(ctx, t)
				sample := report.IDSample{Table: t, Sample: v, Kind: db.IDKindOf(v)}
				if err != nil {
					sample.Err = err.Error()
				}
				samples = append(samples, sample)
			}
			report.IDKinds(cmd.OutOrStdout(), samples)
			return nil
		})
	},
}

var checkDeletedAtCmd = &cobra.Command{
	Use:   "deleted-at [table...]",
	Short: "Verify the deleted_at column exists on soft-delete tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := args
		if len(tables) == 0 {
			tables = db.SoftDeleteTables()
		}
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			out := cmd.OutOrStdout()
			missing := 0
			for _, t := range tables {
				ok, err := s.HasColumn(ctx, t, "deleted_at")
				switch {
				case err != nil:
					missing++
					fmt.Fprintf(out, "%-24s error: %v\n", t, err)
				case ok:
					fmt.Fprintf(out, "%-24s ok\n", t)
				default:
					missing++
					fmt.Fprintf(out, "%-24s missing\n", t)
				}
			}
			if missing > 0 {
				return fmt.Errorf("%d of %d tables lack deleted_at", missing, len(tables))
			}
			return nil
		})
	},
}

var checkConnectivityCmd = &cobra.Command{
	Use:   "connectivity",
	Short: "Ping the database and the hosted REST endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			out := cmd.OutOrStdout()
			if err := s.Ping(ctx); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			fmt.Fprintln(out, "database: ok")

			if cfg.APIURL == "" {
				fmt.Fprintln(out, "rest: skipped (API_URL not set)")
				return nil
			}
			url := strings.TrimRight(cfg.APIURL, "/") + "/rest/v1/"
			headers := map[string]string{
				"apikey":        cfg.APIKey,
				"Authorization": "Bearer " + cfg.APIKey,
			}
			status, err := utils.DoGETJSON(ctx, url, headers, nil)
			if err != nil {
				return fmt.Errorf("rest %s (status %d): %w", url, status, err)
			}
			fmt.Fprintf(out, "rest: ok (status %d)\n", status)
			return nil
		})
	},
}

func init() {
	checkCmd.AddCommand(checkTablesCmd, checkIDsCmd, checkDeletedAtCmd, checkConnectivityCmd)
	rootCmd.AddCommand(checkCmd)
}
