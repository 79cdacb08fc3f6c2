package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthYearLayout is the time layout of MonthlyBillingRecord.MonthYear (YYYY-MM).
const MonthYearLayout = "2006-01"

// MonthlyBillingRecord is one billing period of a profile. The composite unique
// index guarantees at most one record per (profile, month).
type MonthlyBillingRecord struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProfileID uint            `gorm:"not null;index:ux_monthly_records_profile_month,unique,priority:1" json:"profile_id"`
	MonthYear string          `gorm:"type:char(7);not null;index:ux_monthly_records_profile_month,unique,priority:2;index" json:"month_year"`
	StartDate time.Time       `gorm:"type:timestamp;not null" json:"start_date"`
	EndDate   time.Time       `gorm:"type:timestamp;not null" json:"end_date"`
	Fee       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"fee"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Advance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"advance"`
	Profit    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"profit"`
	IsPaid    bool            `gorm:"default:false;index" json:"is_paid"`
	PaidAt    *time.Time      `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// MonthBounds returns the first instant and the last second of the month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// MonthYearOf formats t as a month-year key.
func MonthYearOf(t time.Time) string {
	return t.Format(MonthYearLayout)
}
