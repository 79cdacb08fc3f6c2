package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/FeeFox/app/models"
)

// MonthlyReport aggregates one month of records and ledger entries.
type MonthlyReport struct {
	MonthYear        string                     `json:"month_year"`
	Records          int                        `json:"records"`
	Paid             int                        `json:"paid"`
	Unpaid           int                        `json:"unpaid"`
	TotalFee         decimal.Decimal            `json:"total_fee"`
	TotalOutstanding decimal.Decimal            `json:"total_outstanding"`
	TotalCollected   decimal.Decimal            `json:"total_collected"`
	Payments         int                        `json:"payments"`
	CollectedBy      map[string]decimal.Decimal `json:"collected_by_method"`
}

// ParseMonthYear validates a YYYY-MM key and returns the first instant of the month.
func ParseMonthYear(monthYear string) (time.Time, error) {
	t, err := time.ParseInLocation(models.MonthYearLayout, monthYear, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// BuildMonthlyReport is a pure aggregation. Payments outside monthYear are ignored.
func BuildMonthlyReport(monthYear string, records []models.MonthlyBillingRecord, payments []models.PaymentLedgerEntry) MonthlyReport {
	r := MonthlyReport{
		MonthYear:        monthYear,
		TotalFee:         decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalCollected:   decimal.Zero,
		CollectedBy:      map[string]decimal.Decimal{},
	}
	for _, m := range models.PaymentMethods {
		r.CollectedBy[m] = decimal.Zero
	}

	for _, rec := range records {
		if rec.MonthYear != monthYear {
			continue
		}
		r.Records++
		if rec.IsPaid {
			r.Paid++
		} else {
			r.Unpaid++
		}
		r.TotalFee = r.TotalFee.Add(rec.Fee)
		if rec.Balance.IsPositive() {
			r.TotalOutstanding = r.TotalOutstanding.Add(rec.Balance)
		}
	}

	for _, p := range payments {
		if p.MonthYear != monthYear {
			continue
		}
		r.Payments++
		r.TotalCollected = r.TotalCollected.Add(p.Amount)
		r.CollectedBy[p.Method] = r.CollectedBy[p.Method].Add(p.Amount)
	}
	return r
}

// MonthlyReport loads the month's records and payments and aggregates them.
func (s *Service) MonthlyReport(ctx context.Context, monthYear string) (*MonthlyReport, []models.MonthlyBillingRecord, error) {
	start, err := ParseMonthYear(monthYear)
	if err != nil {
		return nil, nil, err
	}
	_, end := models.MonthBounds(start)

	records, err := s.repo.ListMonthlyRecords(ctx, monthYear)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.repo.ListPaymentsBetween(ctx, start, end)
	if err != nil {
		return nil, nil, err
	}

	report := BuildMonthlyReport(monthYear, records, payments)
	return &report, records, nil
}

// DashboardCounts are the headline numbers of the console dashboard.
type DashboardCounts struct {
	Profiles        int64           `json:"profiles"`
	UnpaidThisMonth int             `json:"unpaid_this_month"`
	CollectedMonth  decimal.Decimal `json:"collected_this_month"`
	PaymentsMonth   int             `json:"payments_this_month"`
}

// Dashboard computes the dashboard counters for the current month.
func (s *Service) Dashboard(ctx context.Context) (*DashboardCounts, error) {
	count, err := s.repo.CountProfiles(ctx)
	if err != nil {
		return nil, err
	}
	report, _, err := s.MonthlyReport(ctx, s.CurrentMonthYear())
	if err != nil {
		return nil, err
	}
	return &DashboardCounts{
		Profiles:        count,
		UnpaidThisMonth: report.Unpaid,
		CollectedMonth:  report.TotalCollected,
		PaymentsMonth:   report.Payments,
	}, nil
}
