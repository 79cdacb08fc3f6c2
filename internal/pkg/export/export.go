// Package export renders monthly reports as CSV or Excel files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ManuelReschke/FeeFox/app/models"
	"github.com/ManuelReschke/FeeFox/internal/pkg/billing"
)

var recordHeader = []string{"profile_id", "external_id", "name", "month_year", "fee", "balance", "advance", "profit", "paid", "paid_at"}

// FileName is the canonical name of a monthly report file.
func FileName(monthYear, ext string) string {
	return fmt.Sprintf("monthly-report-%s.%s", monthYear, ext)
}

func recordRows(records []models.MonthlyBillingRecord, profiles map[uint]models.BillingProfile) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		p := profiles[rec.ProfileID]
		name := p.Name
		if name == "" {
			name = billing.DefaultName
		}
		paidAt := ""
		if rec.PaidAt != nil {
			paidAt = rec.PaidAt.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(rec.ProfileID), 10),
			p.ExternalID,
			name,
			rec.MonthYear,
			rec.Fee.StringFixed(2),
			rec.Balance.StringFixed(2),
			rec.Advance.StringFixed(2),
			rec.Profit.StringFixed(2),
			strconv.FormatBool(rec.IsPaid),
			paidAt,
		})
	}
	return rows
}

func summaryRows(report billing.MonthlyReport) [][]string {
	rows := [][]string{
		{"month_year", report.MonthYear},
		{"records", strconv.Itoa(report.Records)},
		{"paid", strconv.Itoa(report.Paid)},
		{"unpaid", strconv.Itoa(report.Unpaid)},
		{"total_fee", report.TotalFee.StringFixed(2)},
		{"total_outstanding", report.TotalOutstanding.StringFixed(2)},
		{"total_collected", report.TotalCollected.StringFixed(2)},
		{"payments", strconv.Itoa(report.Payments)},
	}
	for _, m := range models.PaymentMethods {
		rows = append(rows, []string{"collected_" + m, report.CollectedBy[m].StringFixed(2)})
	}
	return rows
}

// WriteMonthlyReportCSV writes one line per monthly record followed by a blank
// line and the summary as key,value pairs.
func WriteMonthlyReportCSV(w io.Writer, report billing.MonthlyReport, records []models.MonthlyBillingRecord, profiles map[uint]models.BillingProfile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(recordRows(records, profiles)); err != nil {
		return err
	}
	if err := cw.Write([]string{}); err != nil {
		return err
	}
	if err := cw.WriteAll(summaryRows(report)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// MonthlyReportCSV renders the CSV report into memory.
func MonthlyReportCSV(report billing.MonthlyReport, records []models.MonthlyBillingRecord, profiles map[uint]models.BillingProfile) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteMonthlyReportCSV(&buf, report, records, profiles); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MonthlyReportXLSX renders a workbook with a "Records" and a "Summary" sheet.
func MonthlyReportXLSX(report billing.MonthlyReport, records []models.MonthlyBillingRecord, profiles map[uint]models.BillingProfile) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), "Records"); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "Records", append([][]string{recordHeader}, recordRows(records, profiles)...)); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet("Summary"); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "Summary", summaryRows(report)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
