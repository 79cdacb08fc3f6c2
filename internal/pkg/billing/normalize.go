package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultName is used when no name-like column resolves.
const DefaultName = "N/A"

// Alias tables, most specific and most recent convention first. The order is
// the precedence policy; do not sort these.
var (
	ExternalIDKeys = []string{"userId", "UserId", "userID", "UserID", "user_id", "customerId", "CustomerID", "id", "ID", "Id"}
	UsernameKeys   = []string{"username", "Username", "UserName", "userName", "user_name", "name", "Name", "NAME"}
	AddressKeys    = []string{"address", "Address", "ADDRESS", "area", "Area"}
	PhoneKeys      = []string{"phone", "Phone", "mobile", "Mobile", "contact", "Contact"}
	PackageKeys    = []string{"package", "Package", "packageName", "PackageName", "plan", "Plan"}
	MonthlyFeeKeys = []string{"monthlyFee", "MonthlyFee", "monthly_fee", "fee", "Fee", "bill", "Bill"}
	BalanceKeys    = []string{"balance", "Balance", "due", "Due", "remaining", "Remaining"}
	AdvanceKeys    = []string{"advance", "Advance", "ADVANCE"}
	ProfitKeys     = []string{"profit", "Profit", "PROFIT"}
)

// Resolve returns the value of the first candidate key holding a non-empty value,
// or def when none does. nil and blank strings count as empty.
func Resolve(record map[string]any, candidateKeys []string, def any) any {
	for _, key := range candidateKeys {
		v, ok := record[key]
		if !ok || isEmptyValue(v) {
			continue
		}
		return v
	}
	return def
}

// ResolveString resolves like Resolve and renders the winner as trimmed text.
func ResolveString(record map[string]any, candidateKeys []string, def string) string {
	v := Resolve(record, candidateKeys, nil)
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// ResolveDecimal resolves an amount. Unparseable values fall back to def, the
// same as a miss, so a stray "n/a" in a fee column never blocks an import.
func ResolveDecimal(record map[string]any, candidateKeys []string, def decimal.Decimal) decimal.Decimal {
	v := Resolve(record, candidateKeys, nil)
	if v == nil {
		return def
	}
	d, err := toDecimal(v)
	if err != nil {
		return def
	}
	return d
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case string:
		// spreadsheet exports carry thousands separators and currency symbols
		cleaned := strings.NewReplacer(",", "", " ", "", "৳", "", "$", "", "€", "").Replace(strings.TrimSpace(t))
		return decimal.NewFromString(cleaned)
	default:
		return decimal.NewFromString(strings.TrimSpace(fmt.Sprint(v)))
	}
}
