package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ManuelReschke/FeeFox/app/models"
	"github.com/ManuelReschke/FeeFox/internal/pkg/billing"
)

func fixture() (billing.MonthlyReport, []models.MonthlyBillingRecord, map[uint]models.BillingProfile) {
	paidAt := time.Date(2024, time.February, 3, 10, 0, 0, 0, time.UTC)
	records := []models.MonthlyBillingRecord{
		{ProfileID: 1, MonthYear: "2024-02", Fee: decimal.NewFromInt(500), Balance: decimal.Zero, IsPaid: true, PaidAt: &paidAt},
		{ProfileID: 2, MonthYear: "2024-02", Fee: decimal.NewFromInt(300), Balance: decimal.NewFromInt(300)},
	}
	payments := []models.PaymentLedgerEntry{
		{ProfileID: 1, MonthYear: "2024-02", Amount: decimal.NewFromInt(500), Method: models.PaymentMethodCash},
	}
	profiles := map[uint]models.BillingProfile{
		1: {ID: 1, ExternalID: "C-1", Name: "Alice"},
	}
	return billing.BuildMonthlyReport("2024-02", records, payments), records, profiles
}

func TestWriteMonthlyReportCSV(t *testing.T) {
	report, records, profiles := fixture()

	var buf bytes.Buffer
	require.NoError(t, WriteMonthlyReportCSV(&buf, report, records, profiles))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "profile_id,external_id,name,month_year,fee,balance,advance,profit,paid,paid_at", lines[0])
	assert.Equal(t, "1,C-1,Alice,2024-02,500.00,0.00,0.00,0.00,true,2024-02-03 10:00:00", lines[1])
	assert.Equal(t, "2,,N/A,2024-02,300.00,300.00,0.00,0.00,false,", lines[2])
	assert.Contains(t, buf.String(), "total_outstanding,300.00")
	assert.Contains(t, buf.String(), "collected_cash,500.00")
}

func TestMonthlyReportXLSX(t *testing.T) {
	report, records, profiles := fixture()

	data, err := MonthlyReportXLSX(report, records, profiles)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Alice", rows[1][2])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"month_year", "2024-02"}, summary[0])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "monthly-report-2024-02.csv", FileName("2024-02", "csv"))
}
