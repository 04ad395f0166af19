package cmd

import (
	"github.com/barretodotcom/inmocrm/breadcrumbs"
	"github.com/barretodotcom/inmocrm/report"
	"github.com/spf13/cobra"
)

var breadcrumbsCmd = &cobra.Command{
	Use:   "breadcrumbs <path>",
	Short: "Print the navigation trail for an admin URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, err := loadLabels(labelsFile)
		if err != nil {
			return err
		}
		report.Breadcrumbs(cmd.OutOrStdout(), breadcrumbs.Build(args[0], labels))
		return nil
	},
}

func init() {
	breadcrumbsCmd.Flags().StringVar(&labelsFile, "labels", "", "YAML file with extra breadcrumb labels")
	rootCmd.AddCommand(breadcrumbsCmd)
}
