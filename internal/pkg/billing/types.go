package billing

import "github.com/shopspring/decimal"

// Actor is the authenticated staff member performing an operation. It is passed
// explicitly instead of being read from ambient session state.
type Actor struct {
	UserID uint
	Name   string
}

// PaymentInput is a single payment collected from a subscriber.
type PaymentInput struct {
	ProfileID uint
	Amount    decimal.Decimal
	Method    string
	PayerName string
}

// GenerateResult summarizes a monthly generation batch.
type GenerateResult struct {
	MonthYear string `json:"month_year"`
	Created   int    `json:"created"`
	Existing  int    `json:"existing"`
	Failed    int    `json:"failed"`
}

// RowError describes a bulk import row that could not be stored.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Created        int        `json:"created"`
	Updated        int        `json:"updated"`
	MonthlyCreated int        `json:"monthly_created"`
	Errors         []RowError `json:"errors"`
}
