package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ManuelReschke/FeeFox/app/models"
)

var decimalZero = decimal.Zero

// RecordPayment validates and reconciles a payment, then writes the ledger
// entry, the profile update and the current monthly record update in one
// transaction. On success entry.BalanceAfter equals the stored profile balance.
func (s *Service) RecordPayment(ctx context.Context, actor Actor, in PaymentInput) (*models.PaymentLedgerEntry, error) {
	method := normalizeMethod(in.Method)
	if method == "" {
		return nil, ErrInvalidMethod
	}
	payer := strings.TrimSpace(in.PayerName)
	if payer == "" {
		return nil, ErrMissingPayer
	}
	if in.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	monthYear := models.MonthYearOf(now)
	amount := in.Amount.Round(2)

	var entry *models.PaymentLedgerEntry
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		profile, err := tx.GetProfileForUpdate(ctx, in.ProfileID)
		if err != nil {
			return mapNotFound(err)
		}

		if err := ValidatePayment(profile.Balance, profile.MonthlyFee, amount); err != nil {
			return err
		}

		result := Reconcile(profile.Balance, profile.MonthlyFee, amount)
		paid := s.paidRule.isPaid(result, amount)

		entry = &models.PaymentLedgerEntry{
			Reference:       uuid.NewString(),
			ProfileID:       profile.ID,
			MonthYear:       monthYear,
			Amount:          amount,
			Method:          method,
			PayerName:       payer,
			CollectedByID:   actor.UserID,
			CollectedByName: actor.Name,
			BalanceBefore:   profile.Balance,
			BalanceAfter:    result.NewBalance,
			FeeBefore:       profile.MonthlyFee,
			FeeAfter:        result.NewMonthlyFee,
			IsPaid:          paid,
			CreatedAt:       now,
		}
		if err := tx.CreatePayment(ctx, entry); err != nil {
			return fmt.Errorf("write ledger entry: %w", err)
		}

		profile.Balance = result.NewBalance
		profile.MonthlyFee = result.NewMonthlyFee
		profile.Paid = paid
		if err := tx.SaveProfile(ctx, profile); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}

		return applyToMonthlyRecord(ctx, tx, profile.ID, monthYear, entry.FeeBefore.Sub(entry.FeeAfter), paid, now)
	})
	if err != nil {
		if !IsValidationError(err) && !errors.Is(err, ErrProfileNotFound) {
			log.Errorf("[Billing] payment for profile %d failed: %v", in.ProfileID, err)
		}
		return nil, err
	}

	log.Infof("[Billing] recorded %s %s payment for profile %d by %s", entry.Amount.StringFixed(2), entry.Method, entry.ProfileID, actor.Name)
	return entry, nil
}

// applyToMonthlyRecord reduces the month's record by the part of the payment
// that reached the fee and mirrors the profile's paid state. Arrears paid off
// from the profile balance leave the record untouched.
// A missing record is not an error; the month may not be generated yet.
func applyToMonthlyRecord(ctx context.Context, tx Repository, profileID uint, monthYear string, feePaid decimal.Decimal, paid bool, now time.Time) error {
	rec, err := tx.GetMonthlyRecord(ctx, profileID, monthYear)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load monthly record: %w", err)
	}

	remaining := rec.Balance.Sub(feePaid)
	if remaining.IsNegative() {
		remaining = decimalZero
	}
	rec.Balance = remaining
	if paid && !rec.IsPaid {
		rec.IsPaid = true
		paidAt := now
		rec.PaidAt = &paidAt
	}
	if err := tx.SaveMonthlyRecord(ctx, rec); err != nil {
		return fmt.Errorf("update monthly record: %w", err)
	}
	return nil
}
