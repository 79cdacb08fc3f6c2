package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name                 string
		balance, fee, pay    string
		wantBalance, wantFee string
		wantPaid             bool
	}{
		{name: "partial balance", balance: "100", fee: "50", pay: "30", wantBalance: "70", wantFee: "50"},
		{name: "balance cleared fee remains", balance: "100", fee: "50", pay: "100", wantBalance: "0", wantFee: "50"},
		{name: "overflow absorbed by fee", balance: "100", fee: "50", pay: "150", wantBalance: "0", wantFee: "0", wantPaid: true},
		{name: "overflow partially reduces fee", balance: "100", fee: "50", pay: "120", wantBalance: "0", wantFee: "30"},
		{name: "zero payment is a no-op", balance: "100", fee: "50", pay: "0", wantBalance: "100", wantFee: "50"},
		{name: "nothing owed", balance: "0", fee: "0", pay: "0", wantBalance: "0", wantFee: "0", wantPaid: true},
		{name: "credit balance folds into fee", balance: "-20", fee: "50", pay: "10", wantBalance: "0", wantFee: "20"},
		{name: "cents", balance: "10.55", fee: "5.45", pay: "16.00", wantBalance: "0", wantFee: "0", wantPaid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(d(tt.balance), d(tt.fee), d(tt.pay))
			assert.True(t, got.NewBalance.Equal(d(tt.wantBalance)), "NewBalance = %s, want %s", got.NewBalance, tt.wantBalance)
			assert.True(t, got.NewMonthlyFee.Equal(d(tt.wantFee)), "NewMonthlyFee = %s, want %s", got.NewMonthlyFee, tt.wantFee)
			assert.Equal(t, tt.wantPaid, got.IsPaid)
		})
	}
}

func TestReconcileRemainderInvariant(t *testing.T) {
	values := []string{"-25", "0", "0.01", "10", "49.99", "50", "100", "250.50"}
	for _, b := range values {
		for _, f := range values {
			fee := d(f)
			if fee.IsNegative() {
				continue
			}
			balance := d(b)
			owed := decimal.Max(decimal.Zero, balance.Add(fee))
			for _, p := range values {
				pay := d(p)
				if ValidatePayment(balance, fee, pay) != nil {
					continue
				}
				got := Reconcile(balance, fee, pay)
				want := decimal.Max(decimal.Zero, balance.Add(fee).Sub(pay))
				require.True(t, got.Remainder().Equal(want), "Reconcile(%s, %s, %s) remainder = %s, want %s", b, f, p, got.Remainder(), want)
				require.Equal(t, got.Remainder().LessThanOrEqual(decimal.Zero), got.IsPaid, "Reconcile(%s, %s, %s)", b, f, p)
				require.False(t, got.NewBalance.IsNegative() || got.NewMonthlyFee.IsNegative(), "Reconcile(%s, %s, %s) produced negative parts", b, f, p)
				require.False(t, pay.GreaterThan(owed), "payment %s above owed %s passed validation", p, owed)
			}
		}
	}
}

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		balance, fee, pay string
		want              error
	}{
		{balance: "100", fee: "50", pay: "150", want: nil},
		{balance: "100", fee: "50", pay: "0", want: nil},
		{balance: "100", fee: "50", pay: "150.01", want: ErrAmountExceedsOwed},
		{balance: "100", fee: "50", pay: "-1", want: ErrInvalidAmount},
		{balance: "100", fee: "-5", pay: "10", want: ErrNegativeFee},
		{balance: "-100", fee: "50", pay: "1", want: ErrAmountExceedsOwed},
	}

	for _, tt := range tests {
		err := ValidatePayment(d(tt.balance), d(tt.fee), d(tt.pay))
		if tt.want == nil {
			assert.NoError(t, err, "ValidatePayment(%s, %s, %s)", tt.balance, tt.fee, tt.pay)
			continue
		}
		assert.ErrorIs(t, err, tt.want, "ValidatePayment(%s, %s, %s)", tt.balance, tt.fee, tt.pay)
		assert.True(t, IsValidationError(err))
	}
}

func TestPaidRule(t *testing.T) {
	result := Reconcile(d("100"), d("50"), d("100"))
	assert.False(t, PaidRuleRemainder.isPaid(result, d("100")), "fee still outstanding")
	assert.True(t, PaidRuleLegacyFullPayment.isPaid(result, d("100")))
	assert.False(t, PaidRuleLegacyFullPayment.isPaid(Reconcile(d("0"), d("50"), d("0")), d("0")))

	assert.Equal(t, PaidRuleLegacyFullPayment, ParsePaidRule("LEGACY"))
	assert.Equal(t, PaidRuleRemainder, ParsePaidRule(""))
	assert.Equal(t, PaidRuleRemainder, ParsePaidRule("bogus"))
}
