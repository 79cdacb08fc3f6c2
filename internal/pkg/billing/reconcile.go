package billing

import "github.com/shopspring/decimal"

// Reconciliation is the outcome of applying one payment to a balance and fee.
type Reconciliation struct {
	NewBalance    decimal.Decimal
	NewMonthlyFee decimal.Decimal
	IsPaid        bool
}

// Remainder is what is still owed after the payment.
func (r Reconciliation) Remainder() decimal.Decimal {
	return r.NewBalance.Add(r.NewMonthlyFee)
}

// Reconcile subtracts payment from balance. A negative result is carried into
// the monthly fee, which is clamped at zero, and the balance becomes zero.
//
// Invariant: NewBalance+NewMonthlyFee == max(0, balance+monthlyFee-payment)
// for fee >= 0. Callers validate inputs with ValidatePayment first.
func Reconcile(balance, monthlyFee, payment decimal.Decimal) Reconciliation {
	newBalance := balance.Sub(payment)
	newFee := monthlyFee

	if newBalance.IsNegative() {
		newFee = monthlyFee.Add(newBalance)
		newBalance = decimal.Zero
		if newFee.IsNegative() {
			newFee = decimal.Zero
		}
	}

	return Reconciliation{
		NewBalance:    newBalance,
		NewMonthlyFee: newFee,
		IsPaid:        newBalance.Add(newFee).LessThanOrEqual(decimal.Zero),
	}
}

// ValidatePayment enforces the preconditions of Reconcile.
func ValidatePayment(balance, monthlyFee, payment decimal.Decimal) error {
	if payment.IsNegative() {
		return ErrInvalidAmount
	}
	if monthlyFee.IsNegative() {
		return ErrNegativeFee
	}
	owed := balance.Add(monthlyFee)
	if owed.IsNegative() {
		owed = decimal.Zero
	}
	if payment.GreaterThan(owed) {
		return ErrAmountExceedsOwed
	}
	return nil
}
