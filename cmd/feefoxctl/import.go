package main

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/FeeFox/internal/pkg/billing"
	"github.com/ManuelReschke/FeeFox/internal/pkg/importer"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import billing profiles from a CSV or XLSX file",
	Example: `  # validate a file without touching the database
  feefoxctl import customers.xlsx --dry-run

  # import and create this month's records
  feefoxctl import customers.csv --generate-monthly`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("dry-run", false, "Parse and validate against an in-memory store only")
	importCmd.Flags().Bool("generate-monthly", false, "Create the current month's record for every imported profile")
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	generate, _ := cmd.Flags().GetBool("generate-monthly")

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := importer.Parse(f, args[0])
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	log.Infof("[CLI] parsed %d rows from %s", len(rows), args[0])

	var svc *billing.Service
	if dryRun {
		svc = billing.NewService(billing.NewMemoryRepository())
	} else {
		svc = newService()
	}

	res, err := svc.ImportProfiles(cmd.Context(), rows, generate)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created: %d\nupdated: %d\nmonthly records created: %d\n", res.Created, res.Updated, res.MonthlyCreated)
	for _, rowErr := range res.Errors {
		fmt.Fprintf(out, "row %d: %s\n", rowErr.Row, rowErr.Message)
	}
	if dryRun {
		fmt.Fprintln(out, "dry run, nothing was written")
	}
	return nil
}
