package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/FeeFox/app/models"
	"github.com/ManuelReschke/FeeFox/internal/pkg/export"
	"github.com/ManuelReschke/FeeFox/internal/pkg/s3export"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Monthly billing reports",
}

var reportExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the monthly report to a file or the S3 bucket",
	Example: `  feefoxctl report export --month 2024-03 --format xlsx --out ./reports
  feefoxctl report export --upload`,
	Args: cobra.NoArgs,
	RunE: runReportExport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportExportCmd)

	reportExportCmd.Flags().String("month", "", "Month as YYYY-MM (default: current month)")
	reportExportCmd.Flags().String("format", "csv", "Output format: csv or xlsx")
	reportExportCmd.Flags().String("out", ".", "Output directory")
	reportExportCmd.Flags().Bool("upload", false, "Upload to the configured S3 bucket instead of writing a file")
}

func runReportExport(cmd *cobra.Command, args []string) error {
	month, _ := cmd.Flags().GetString("month")
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")
	upload, _ := cmd.Flags().GetBool("upload")

	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unsupported format %q", format)
	}

	svc := newService()
	if month == "" {
		month = svc.CurrentMonthYear()
	}
	ctx := cmd.Context()

	report, records, err := svc.MonthlyReport(ctx, month)
	if err != nil {
		return err
	}
	all, err := svc.ListProfiles(ctx, "", 0, 0)
	if err != nil {
		return err
	}
	profiles := make(map[uint]models.BillingProfile, len(all))
	for _, p := range all {
		profiles[p.ID] = p
	}

	var data []byte
	if format == "xlsx" {
		data, err = export.MonthlyReportXLSX(*report, records, profiles)
	} else {
		data, err = export.MonthlyReportCSV(*report, records, profiles)
	}
	if err != nil {
		return err
	}
	filename := export.FileName(month, format)

	if upload {
		cfg, err := s3export.LoadConfig()
		if err != nil {
			return err
		}
		client, err := s3export.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		res, err := client.UploadReport(ctx, month, filename, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded s3://%s/%s (%d bytes)\n", res.BucketName, res.ObjectKey, res.Size)
		return nil
	}

	target := filepath.Join(outDir, filename)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d records)\n", target, report.Records)
	return nil
}
