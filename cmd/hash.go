package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/barretodotcom/inmocrm/auth"
	"github.com/barretodotcom/inmocrm/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	hashPassword string
	hashEmail    string
)

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "bcrypt password hashes for client credentials",
}

var hashGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print a hash, its verification and the UPDATE statement",
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(hashPassword)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "hash: %s\n", hash)
		fmt.Fprintf(out, "verified: %t\n", auth.CheckPassword(hash, hashPassword))
		if hashEmail != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, auth.UpdateStatement(strings.ToLower(hashEmail), hash))
		}
		return nil
	},
}

var hashApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Hash the password and store it for the given email",
	RunE: func(cmd *cobra.Command, args []string) error {
		if hashEmail == "" {
			return errors.New("--email is required")
		}
		hash, err := auth.HashPassword(hashPassword)
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			if err := s.SetCredentialPassword(ctx, hashEmail, hash); err != nil {
				return err
			}
			log.Info("credential updated", zap.String("email", strings.ToLower(hashEmail)))
			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", strings.ToLower(hashEmail))
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{hashGenerateCmd, hashApplyCmd} {
		c.Flags().StringVar(&hashPassword, "password", "", "plain-text password")
		c.Flags().StringVar(&hashEmail, "email", "", "client email")
		_ = c.MarkFlagRequired("password")
	}
	hashCmd.AddCommand(hashGenerateCmd, hashApplyCmd)
	rootCmd.AddCommand(hashCmd)
}
