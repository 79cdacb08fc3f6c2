package billing

import "errors"

// Validation errors are surfaced to the operator as-is; they are never retried.
var (
	ErrInvalidAmount     = errors.New("payment amount must not be negative")
	ErrAmountExceedsOwed = errors.New("payment amount exceeds the total owed")
	ErrNegativeFee       = errors.New("monthly fee must not be negative")
	ErrInvalidMethod     = errors.New("payment method must be one of cash, bank, mobile")
	ErrMissingPayer      = errors.New("payer name is required")
)

var (
	ErrProfileNotFound = errors.New("billing profile not found")
	ErrInvalidMonth    = errors.New("month must be formatted as YYYY-MM")
)

// IsValidationError reports whether err belongs to the operator-facing validation class.
func IsValidationError(err error) bool {
	for _, target := range []error{ErrInvalidAmount, ErrAmountExceedsOwed, ErrNegativeFee, ErrInvalidMethod, ErrMissingPayer, ErrInvalidMonth} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
