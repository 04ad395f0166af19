package cmd

import (
	"context"
	"time"

	"github.com/barretodotcom/inmocrm/db"
	"github.com/barretodotcom/inmocrm/payments"
	"github.com/barretodotcom/inmocrm/report"
	"github.com/spf13/cobra"
)

var inquiryLimit int

var paymentsCmd = &cobra.Command{
	Use:   "payments <email>",
	Short: "Payment schedule and summary for a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			c, err := s.ClientByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			schedules, err := s.PaymentSchedules(ctx, c.ID)
			if err != nil {
				return err
			}
			report.Payments(cmd.OutOrStdout(), c, schedules, payments.Summarize(schedules, time.Now()))
			return nil
		})
	},
}

var inquiriesCmd = &cobra.Command{
	Use:   "inquiries",
	Short: "Latest service inquiries with a status tally",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			list, err := s.RecentInquiries(ctx, inquiryLimit)
			if err != nil {
				return err
			}
			report.Inquiries(cmd.OutOrStdout(), list)
			return nil
		})
	},
}

func init() {
	inquiriesCmd.Flags().IntVar(&inquiryLimit, "limit", 10, "number of inquiries to show (max 100)")
	rootCmd.AddCommand(paymentsCmd, inquiriesCmd)
}
