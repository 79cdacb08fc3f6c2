package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/FeeFox/app/models"
)

// ProfileFromRecord resolves a loosely-typed import row into a profile. Missing
// fields fall back to defaults; a row without an external id is keyed by name.
func ProfileFromRecord(record map[string]any) *models.BillingProfile {
	name := ResolveString(record, UsernameKeys, DefaultName)
	externalID := ResolveString(record, ExternalIDKeys, "")
	if externalID == "" && name != DefaultName {
		externalID = name
	}

	p := &models.BillingProfile{
		ExternalID: externalID,
		Name:       name,
		Address:    ResolveString(record, AddressKeys, ""),
		Phone:      ResolveString(record, PhoneKeys, ""),
		Package:    ResolveString(record, PackageKeys, ""),
		MonthlyFee: ResolveDecimal(record, MonthlyFeeKeys, decimalZero),
		Balance:    ResolveDecimal(record, BalanceKeys, decimalZero),
		Advance:    ResolveDecimal(record, AdvanceKeys, decimalZero),
		Profit:     ResolveDecimal(record, ProfitKeys, decimalZero),
	}
	p.Paid = p.TotalOwed().LessThanOrEqual(decimalZero)
	return p
}

// ImportProfiles upserts every row by external id and optionally generates the
// current month's record. Row failures are collected in the result.
func (s *Service) ImportProfiles(ctx context.Context, rows []map[string]any, generateMonthly bool) (*ImportResult, error) {
	result := &ImportResult{Errors: []RowError{}}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		// header is row 1
		rowNum := i + 2

		profile := ProfileFromRecord(row)
		if strings.TrimSpace(profile.ExternalID) == "" {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "row has neither an id nor a name"})
			continue
		}
		if profile.MonthlyFee.IsNegative() {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: ErrNegativeFee.Error()})
			continue
		}
		if err := profile.Validate(); err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		created, err := s.repo.UpsertProfile(ctx, profile)
		if err != nil {
			log.Errorf("[Import] row %d (%s): %v", rowNum, profile.ExternalID, err)
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: fmt.Sprintf("store profile: %v", err)})
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}

		if generateMonthly {
			_, recCreated, err := s.GenerateMonthlyEntry(ctx, profile)
			if err != nil {
				result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
				continue
			}
			if recCreated {
				result.MonthlyCreated++
			}
		}
	}

	log.Infof("[Import] %d rows: %d created, %d updated, %d monthly records, %d errors",
		len(rows), result.Created, result.Updated, result.MonthlyCreated, len(result.Errors))
	return result, nil
}
