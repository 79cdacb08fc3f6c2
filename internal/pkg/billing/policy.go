package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaidRule decides how the paid flag is derived after a payment.
type PaidRule string

const (
	// PaidRuleRemainder marks a profile paid only when nothing remains owed.
	PaidRuleRemainder PaidRule = "remainder"
	// PaidRuleLegacyFullPayment reproduces the old console, which flagged any
	// payment covering the balance as paid even with a fee still outstanding.
	PaidRuleLegacyFullPayment PaidRule = "legacy"
)

// ParsePaidRule maps a configuration value to a rule, defaulting to remainder.
func ParsePaidRule(raw string) PaidRule {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(PaidRuleLegacyFullPayment), "legacy_full_payment":
		return PaidRuleLegacyFullPayment
	default:
		return PaidRuleRemainder
	}
}

func (r PaidRule) isPaid(result Reconciliation, payment decimal.Decimal) bool {
	if r == PaidRuleLegacyFullPayment && payment.IsPositive() {
		return result.IsPaid || result.NewBalance.IsZero()
	}
	return result.IsPaid
}

func normalizeMethod(method string) string {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "cash":
		return "cash"
	case "bank", "bank_transfer", "transfer":
		return "bank"
	case "mobile", "mobile_banking", "bkash", "nagad":
		return "mobile"
	default:
		return ""
	}
}
