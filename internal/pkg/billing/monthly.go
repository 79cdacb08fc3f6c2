package billing

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/FeeFox/app/models"
)

// GenerateMonthlyEntry creates the record of the current month for profile.
// When one already exists it is returned with created=false and no error,
// including when a concurrent caller won the insert.
func (s *Service) GenerateMonthlyEntry(ctx context.Context, profile *models.BillingProfile) (*models.MonthlyBillingRecord, bool, error) {
	if profile == nil || profile.ID == 0 {
		return nil, false, ErrProfileNotFound
	}

	now := s.now()
	start, end := models.MonthBounds(now)
	fee := profile.MonthlyFee
	if fee.IsNegative() {
		return nil, false, ErrNegativeFee
	}

	rec := &models.MonthlyBillingRecord{
		ProfileID: profile.ID,
		MonthYear: models.MonthYearOf(now),
		StartDate: start,
		EndDate:   end,
		Fee:       fee,
		Balance:   fee,
		Advance:   profile.Advance,
		Profit:    profile.Profit,
		IsPaid:    false,
	}

	created, err := s.repo.CreateMonthlyRecordIfNotExists(ctx, rec)
	if err != nil {
		return nil, false, fmt.Errorf("create monthly record: %w", err)
	}
	return rec, created, nil
}

// GenerateMonthlyEntryByID loads the profile and generates its current record.
func (s *Service) GenerateMonthlyEntryByID(ctx context.Context, profileID uint) (*models.MonthlyBillingRecord, bool, error) {
	profile, err := s.GetProfile(ctx, profileID)
	if err != nil {
		return nil, false, err
	}
	return s.GenerateMonthlyEntry(ctx, profile)
}

// GenerateMonthlyEntries runs the generator for every profile. Failures are
// counted and logged; the batch continues.
func (s *Service) GenerateMonthlyEntries(ctx context.Context) (*GenerateResult, error) {
	profiles, err := s.repo.ListProfiles(ctx, "", 0, 0)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{MonthYear: s.CurrentMonthYear()}
	for i := range profiles {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		_, created, err := s.GenerateMonthlyEntry(ctx, &profiles[i])
		switch {
		case err != nil:
			result.Failed++
			log.Warnf("[Billing] monthly generation for profile %d failed: %v", profiles[i].ID, err)
		case created:
			result.Created++
		default:
			result.Existing++
		}
	}

	log.Infof("[Billing] monthly generation %s: %d created, %d existing, %d failed",
		result.MonthYear, result.Created, result.Existing, result.Failed)
	return result, nil
}
