package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillingProfile is a subscriber billed every month. Balance may go negative to
// represent credit; Paid is derived from Balance+MonthlyFee after each payment.
type BillingProfile struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ExternalID string          `gorm:"type:varchar(191);uniqueIndex" json:"external_id" validate:"required,max=191"`
	Name       string          `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	Address    string          `gorm:"type:varchar(255);default:''" json:"address" validate:"max=255"`
	Phone      string          `gorm:"type:varchar(50);default:''" json:"phone" validate:"max=50"`
	Package    string          `gorm:"type:varchar(100);default:''" json:"package" validate:"max=100"`
	MonthlyFee decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"monthly_fee"`
	Balance    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Advance    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"advance"`
	Profit     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"profit"`
	Paid       bool            `gorm:"default:false;index" json:"paid"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *BillingProfile) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// TotalOwed is the balance plus the current monthly fee.
func (p *BillingProfile) TotalOwed() decimal.Decimal {
	return p.Balance.Add(p.MonthlyFee)
}
