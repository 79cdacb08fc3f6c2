package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/FeeFox/app/models"
)

// Service implements payment collection, monthly generation, import and
// reporting on top of a Repository.
type Service struct {
	repo     Repository
	now      func() time.Time
	paidRule PaidRule
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Month boundaries are derived from it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPaidRule selects how the paid flag is derived after a payment.
func WithPaidRule(rule PaidRule) Option {
	return func(s *Service) {
		s.paidRule = rule
	}
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		now:      time.Now,
		paidRule: PaidRuleRemainder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, opts ...Option) *Service {
	return NewService(NewRepository(db), opts...)
}

// CurrentMonthYear returns the month-year key of the service clock.
func (s *Service) CurrentMonthYear() string {
	return models.MonthYearOf(s.now())
}

// GetProfile loads a profile by id.
func (s *Service) GetProfile(ctx context.Context, id uint) (*models.BillingProfile, error) {
	p, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return p, nil
}

// ListProfiles returns a page of profiles matching query (empty query lists all).
func (s *Service) ListProfiles(ctx context.Context, query string, offset, limit int) ([]models.BillingProfile, error) {
	return s.repo.ListProfiles(ctx, strings.TrimSpace(query), offset, limit)
}

// CreateProfile validates and stores a new profile. Paid is derived from the amounts.
func (s *Service) CreateProfile(ctx context.Context, profile *models.BillingProfile) error {
	profile.ExternalID = strings.TrimSpace(profile.ExternalID)
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.MonthlyFee.IsNegative() {
		return ErrNegativeFee
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	profile.Paid = profile.TotalOwed().LessThanOrEqual(decimalZero)
	return s.repo.SaveProfile(ctx, profile)
}

// UpdateProfile changes the descriptive fields and the monthly fee of a profile.
// Balance and paid state only change through RecordPayment.
func (s *Service) UpdateProfile(ctx context.Context, id uint, changes models.BillingProfile) (*models.BillingProfile, error) {
	if changes.MonthlyFee.IsNegative() {
		return nil, ErrNegativeFee
	}

	var updated *models.BillingProfile
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		p, err := tx.GetProfileForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}
		if name := strings.TrimSpace(changes.Name); name != "" {
			p.Name = name
		}
		p.Address = strings.TrimSpace(changes.Address)
		p.Phone = strings.TrimSpace(changes.Phone)
		p.Package = strings.TrimSpace(changes.Package)
		p.MonthlyFee = changes.MonthlyFee
		p.Advance = changes.Advance
		p.Profit = changes.Profit
		if err := p.Validate(); err != nil {
			return err
		}
		updated = p
		return tx.SaveProfile(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProfile removes a profile and all of its monthly records in one
// transaction. Ledger entries are kept.
func (s *Service) DeleteProfile(ctx context.Context, id uint) (int64, error) {
	var removed int64
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.DeleteProfile(ctx, id); err != nil {
			return mapNotFound(err)
		}
		n, err := tx.DeleteMonthlyRecordsByProfile(ctx, id)
		if err != nil {
			return fmt.Errorf("delete monthly records: %w", err)
		}
		removed = n
		return nil
	})
	return removed, err
}

// ListPayments returns the ledger of a profile, newest first.
func (s *Service) ListPayments(ctx context.Context, profileID uint) ([]models.PaymentLedgerEntry, error) {
	return s.repo.ListPaymentsByProfile(ctx, profileID)
}

// ListMonthlyRecords returns the monthly records of a profile, newest first.
func (s *Service) ListMonthlyRecords(ctx context.Context, profileID uint) ([]models.MonthlyBillingRecord, error) {
	return s.repo.ListMonthlyRecordsByProfile(ctx, profileID)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProfileNotFound
	}
	return err
}
