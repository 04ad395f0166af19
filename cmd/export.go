package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/barretodotcom/inmocrm/db"
	"github.com/barretodotcom/inmocrm/export"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Spreadsheet export of properties and its verification",
}

var exportPropertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Write all properties to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			props, err := s.ListProperties(ctx)
			if err != nil {
				return err
			}
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			if err := export.WriteProperties(f, props); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Info("export written", zap.String("file", exportOut), zap.Int("rows", len(props)))
			fmt.Fprintf(cmd.OutOrStdout(), "%d properties written to %s\n", len(props), exportOut)
			return nil
		})
	},
}

var exportVerifyCmd = &cobra.Command{
	Use:   "verify <file.xlsx>",
	Short: "Check an exported workbook and compare its row count with the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		v, err := export.VerifyProperties(f)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rows: %d  with code: %d\n", v.Rows, v.WithCode)
		for _, p := range v.Problems {
			fmt.Fprintf(out, "row %d: %s\n", p.Row, p.Message)
		}
		for _, d := range v.Duplicates {
			fmt.Fprintf(out, "duplicate code: %s\n", d)
		}

		return withStore(cmd, func(ctx context.Context, s *db.Store) error {
			n, err := s.CountProperties(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "database rows: %d\n", n)
			if n != v.Rows {
				return fmt.Errorf("workbook has %d rows, database has %d", v.Rows, n)
			}
			if !v.OK() {
				return fmt.Errorf("%d problems, %d duplicate codes", len(v.Problems), len(v.Duplicates))
			}
			return nil
		})
	},
}

func init() {
	exportPropertiesCmd.Flags().StringVarP(&exportOut, "out", "o", "propiedades.xlsx", "output file")
	exportCmd.AddCommand(exportPropertiesCmd, exportVerifyCmd)
	rootCmd.AddCommand(exportCmd)
}
