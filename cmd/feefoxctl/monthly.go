package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var generateMonthlyCmd = &cobra.Command{
	Use:   "generate-monthly",
	Short: "Create the current month's record for every profile",
	Long: `Creates one monthly billing record per profile for the current month.
Profiles that already have a record are counted as existing and left alone,
so the command is safe to run repeatedly (e.g. from cron).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newService().GenerateMonthlyEntries(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d created, %d existing, %d failed\n", res.MonthYear, res.Created, res.Existing, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d profiles failed", res.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateMonthlyCmd)
}
