package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/barretodotcom/inmocrm/codes"
	"github.com/barretodotcom/inmocrm/db"
	"github.com/barretodotcom/inmocrm/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixDuplicates bool

var checkDuplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Find active properties sharing a code; --fix soft-deletes all but the newest",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			props, err := s.ListProperties(ctx)
			if err != nil {
				return err
			}
			groups := codes.Duplicates(props)
			if !fixDuplicates {
				report.Duplicates(cmd.OutOrStdout(), groups, nil)
				return nil
			}

			removed := removeDuplicates(ctx, s, groups)
			report.Duplicates(cmd.OutOrStdout(), groups, removed)
			failed := 0
			for id, err := range removed {
				if err != nil {
					failed++
					log.Warn("duplicate not removed", zap.Int64("property", id), zap.Error(err))
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d duplicates could not be removed", failed)
			}
			return nil
		})
	},
}

// removeDuplicates soft-deletes every extra row and keeps going on errors.
func removeDuplicates(ctx context.Context, s *db.Store, groups []codes.DuplicateGroup) map[int64]error {
	out := map[int64]error{}
	for _, g := range groups {
		for _, p := range g.Remove {
			out[p.ID] = s.SoftDelete(ctx, "properties", strconv.FormatInt(p.ID, 10))
		}
	}
	return out
}

var checkAppointmentsCmd = &cobra.Command{
	Use:   "appointments",
	Short: "Check that appointments and property_appointments are linked one to one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			res, err := s.AppointmentSync(ctx)
			if err != nil {
				return err
			}
			report.AppointmentSync(cmd.OutOrStdout(), res)
			if !res.InSync() {
				return fmt.Errorf("appointments out of sync")
			}
			return nil
		})
	},
}

var checkAdvisorPhotosCmd = &cobra.Command{
	Use:   "advisor-photos",
	Short: "Audit advisor photo URLs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			advisors, err := s.Advisors(ctx)
			if err != nil {
				return err
			}
			report.AdvisorPhotos(cmd.OutOrStdout(), db.AuditPhotos(advisors))
			return nil
		})
	},
}

func init() {
	checkDuplicatesCmd.Flags().BoolVar(&fixDuplicates, "fix", false, "soft-delete the older rows of each duplicate code")
	checkCmd.AddCommand(checkDuplicatesCmd, checkAppointmentsCmd, checkAdvisorPhotosCmd)
}
