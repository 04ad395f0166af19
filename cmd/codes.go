package cmd

import (
	"context"
	"fmt"

	"github.com/barretodotcom/inmocrm/codes"
	"github.com/barretodotcom/inmocrm/db"
	"github.com/barretodotcom/inmocrm/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dryRun bool

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Property code coverage and assignment",
}

var codesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show code coverage and the codes an assignment would write",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			props, err := s.ListProperties(ctx)
			if err != nil {
				return err
			}
			cands := codes.FromProperties(props)
			out := cmd.OutOrStdout()
			report.Coverage(out, codes.Coverage(cands), codes.GroupByType(cands))
			report.CodePlan(out, pendingOnly(codes.Plan(cands)), nil)
			return nil
		})
	},
}

var codesAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign PREFIX-NNN codes to properties without one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			props, err := s.ListProperties(ctx)
			if err != nil {
				return err
			}
			cands := codes.FromProperties(props)
			out := cmd.OutOrStdout()

			if dryRun {
				report.CodePlan(out, pendingOnly(codes.Plan(cands)), nil)
				fmt.Fprintln(out, "dry run: nothing written")
				return nil
			}

			res, err := codes.Apply(ctx, s, cands)
			if err != nil {
				return err
			}
			report.CodePlan(out, pendingOnly(res.Assignments), res.Failed)
			for id, ferr := range res.Failed {
				log.Warn("code not written", zap.Int64("property", id), zap.Error(ferr))
			}
			if len(res.Failed) > 0 {
				return fmt.Errorf("%d properties could not be updated", len(res.Failed))
			}
			return nil
		})
	},
}

func pendingOnly(plan []codes.Assignment) []codes.Assignment {
	out := plan[:0:0]
	for _, a := range plan {
		if !a.Reused {
			out = append(out, a)
		}
	}
	return out
}

func init() {
	codesAssignCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without writing")
	codesCmd.AddCommand(codesCheckCmd, codesAssignCmd)
	rootCmd.AddCommand(codesCmd)
}
