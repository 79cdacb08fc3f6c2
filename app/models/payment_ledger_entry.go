package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodBank   = "bank"
	PaymentMethodMobile = "mobile"
)

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []string{PaymentMethodCash, PaymentMethodBank, PaymentMethodMobile}

// PaymentLedgerEntry is an immutable record of one payment. Rows are only ever
// inserted; nothing in the application updates or deletes them.
type PaymentLedgerEntry struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Reference       string          `gorm:"type:char(36);not null;uniqueIndex" json:"reference"`
	ProfileID       uint            `gorm:"not null;index" json:"profile_id"`
	MonthYear       string          `gorm:"type:char(7);not null;index" json:"month_year"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method          string          `gorm:"type:varchar(20);not null;index" json:"method"`
	PayerName       string          `gorm:"type:varchar(150);not null" json:"payer_name"`
	CollectedByID   uint            `gorm:"index" json:"collected_by_id"`
	CollectedByName string          `gorm:"type:varchar(150);default:''" json:"collected_by_name"`
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance_before"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance_after"`
	FeeBefore       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"fee_before"`
	FeeAfter        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"fee_after"`
	IsPaid          bool            `gorm:"default:false" json:"is_paid"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

// IsValidPaymentMethod reports whether method is one of PaymentMethods.
func IsValidPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
