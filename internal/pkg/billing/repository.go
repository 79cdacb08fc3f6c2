package billing

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/FeeFox/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	// WithTx runs fn against a repository bound to one transaction. Any error
	// returned by fn rolls back every write made through it.
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	GetProfile(ctx context.Context, id uint) (*models.BillingProfile, error)
	GetProfileForUpdate(ctx context.Context, id uint) (*models.BillingProfile, error)
	ListProfiles(ctx context.Context, query string, offset, limit int) ([]models.BillingProfile, error)
	CountProfiles(ctx context.Context) (int64, error)
	UpsertProfile(ctx context.Context, profile *models.BillingProfile) (bool, error)
	SaveProfile(ctx context.Context, profile *models.BillingProfile) error
	DeleteProfile(ctx context.Context, id uint) error

	CreateMonthlyRecordIfNotExists(ctx context.Context, record *models.MonthlyBillingRecord) (bool, error)
	GetMonthlyRecord(ctx context.Context, profileID uint, monthYear string) (*models.MonthlyBillingRecord, error)
	SaveMonthlyRecord(ctx context.Context, record *models.MonthlyBillingRecord) error
	ListMonthlyRecords(ctx context.Context, monthYear string) ([]models.MonthlyBillingRecord, error)
	ListMonthlyRecordsByProfile(ctx context.Context, profileID uint) ([]models.MonthlyBillingRecord, error)
	DeleteMonthlyRecordsByProfile(ctx context.Context, profileID uint) (int64, error)

	CreatePayment(ctx context.Context, entry *models.PaymentLedgerEntry) error
	ListPaymentsByProfile(ctx context.Context, profileID uint) ([]models.PaymentLedgerEntry, error)
	ListPaymentsBetween(ctx context.Context, start, end time.Time) ([]models.PaymentLedgerEntry, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetProfile(ctx context.Context, id uint) (*models.BillingProfile, error) {
	var p models.BillingProfile
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileForUpdate locks the row until the surrounding transaction ends.
func (r *gormRepository) GetProfileForUpdate(ctx context.Context, id uint) (*models.BillingProfile, error) {
	var p models.BillingProfile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) ListProfiles(ctx context.Context, query string, offset, limit int) ([]models.BillingProfile, error) {
	var profiles []models.BillingProfile
	q := r.db.WithContext(ctx).Order("name ASC")
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("name LIKE ? OR external_id LIKE ? OR address LIKE ? OR phone LIKE ?", pattern, pattern, pattern, pattern)
	}
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	err := q.Find(&profiles).Error
	return profiles, err
}

func (r *gormRepository) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BillingProfile{}).Count(&count).Error
	return count, err
}

// UpsertProfile inserts or refreshes a profile keyed by external_id. Balance and
// paid state are left alone on update so a re-import never rewrites collected money.
func (r *gormRepository) UpsertProfile(ctx context.Context, profile *models.BillingProfile) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"address",
			"phone",
			"package",
			"monthly_fee",
			"advance",
			"profit",
			"deleted_at",
			"updated_at",
		}),
	}).Create(profile)
	if tx.Error != nil {
		return false, tx.Error
	}

	// MySQL reports 1 affected row for an insert and 2 for an update
	created := tx.RowsAffected == 1
	err := r.db.WithContext(ctx).Where("external_id = ?", profile.ExternalID).First(profile).Error
	return created, err
}

func (r *gormRepository) SaveProfile(ctx context.Context, profile *models.BillingProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *gormRepository) DeleteProfile(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.BillingProfile{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) CreateMonthlyRecordIfNotExists(ctx context.Context, record *models.MonthlyBillingRecord) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "profile_id"},
			{Name: "month_year"},
		},
		DoNothing: true,
	}).Create(record)
	if tx.Error != nil {
		return false, tx.Error
	}

	created := tx.RowsAffected > 0
	if !created {
		// load the winner so callers always get the stored row
		if err := r.db.WithContext(ctx).
			Where("profile_id = ? AND month_year = ?", record.ProfileID, record.MonthYear).
			First(record).Error; err != nil {
			return false, err
		}
	}
	return created, nil
}

func (r *gormRepository) GetMonthlyRecord(ctx context.Context, profileID uint, monthYear string) (*models.MonthlyBillingRecord, error) {
	var rec models.MonthlyBillingRecord
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND month_year = ?", profileID, monthYear).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *gormRepository) SaveMonthlyRecord(ctx context.Context, record *models.MonthlyBillingRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *gormRepository) ListMonthlyRecords(ctx context.Context, monthYear string) ([]models.MonthlyBillingRecord, error) {
	var recs []models.MonthlyBillingRecord
	err := r.db.WithContext(ctx).Where("month_year = ?", monthYear).Order("profile_id ASC").Find(&recs).Error
	return recs, err
}

func (r *gormRepository) ListMonthlyRecordsByProfile(ctx context.Context, profileID uint) ([]models.MonthlyBillingRecord, error) {
	var recs []models.MonthlyBillingRecord
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("month_year DESC").Find(&recs).Error
	return recs, err
}

func (r *gormRepository) DeleteMonthlyRecordsByProfile(ctx context.Context, profileID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Delete(&models.MonthlyBillingRecord{})
	return res.RowsAffected, res.Error
}

func (r *gormRepository) CreatePayment(ctx context.Context, entry *models.PaymentLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormRepository) ListPaymentsByProfile(ctx context.Context, profileID uint) ([]models.PaymentLedgerEntry, error) {
	var entries []models.PaymentLedgerEntry
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *gormRepository) ListPaymentsBetween(ctx context.Context, start, end time.Time) ([]models.PaymentLedgerEntry, error) {
	var entries []models.PaymentLedgerEntry
	err := r.db.WithContext(ctx).
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
