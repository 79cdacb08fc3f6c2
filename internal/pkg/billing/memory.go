package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/FeeFox/app/models"
)

type memState struct {
	profiles map[uint]models.BillingProfile
	records  map[string]models.MonthlyBillingRecord
	payments []models.PaymentLedgerEntry
	nextID   uint
}

func (s memState) clone() memState {
	c := memState{
		profiles: make(map[uint]models.BillingProfile, len(s.profiles)),
		records:  make(map[string]models.MonthlyBillingRecord, len(s.records)),
		payments: append([]models.PaymentLedgerEntry(nil), s.payments...),
		nextID:   s.nextID,
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	return c
}

// MemoryRepository is an in-memory Repository for dry runs and tests. WithTx
// serializes transactions and restores the previous state when fn fails.
type MemoryRepository struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu: &sync.Mutex{},
		state: &memState{
			profiles: map[uint]models.BillingProfile{},
			records:  map[string]models.MonthlyBillingRecord{},
		},
	}
}

func recordKey(profileID uint, monthYear string) string {
	return fmt.Sprintf("%d/%s", profileID, monthYear)
}

func (r *MemoryRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *MemoryRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.state.clone()
	tx := *r
	tx.inTx = true
	if err := fn(&tx); err != nil {
		*r.state = snapshot
		return err
	}
	return nil
}

func (r *MemoryRepository) GetProfile(ctx context.Context, id uint) (*models.BillingProfile, error) {
	defer r.lock()()
	p, ok := r.state.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) GetProfileForUpdate(ctx context.Context, id uint) (*models.BillingProfile, error) {
	return r.GetProfile(ctx, id)
}

func (r *MemoryRepository) ListProfiles(ctx context.Context, query string, offset, limit int) ([]models.BillingProfile, error) {
	defer r.lock()()
	var out []models.BillingProfile
	for _, p := range r.state.profiles {
		if query == "" || strings.Contains(p.Name, query) || strings.Contains(p.ExternalID, query) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name || (out[i].Name == out[j].Name && out[i].ID < out[j].ID) })
	if limit > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		end := offset + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[offset:end]
	}
	return out, nil
}

func (r *MemoryRepository) CountProfiles(ctx context.Context) (int64, error) {
	defer r.lock()()
	return int64(len(r.state.profiles)), nil
}

func (r *MemoryRepository) UpsertProfile(ctx context.Context, profile *models.BillingProfile) (bool, error) {
	defer r.lock()()
	for id, existing := range r.state.profiles {
		if existing.ExternalID != profile.ExternalID {
			continue
		}
		existing.Name = profile.Name
		existing.Address = profile.Address
		existing.Phone = profile.Phone
		existing.Package = profile.Package
		existing.MonthlyFee = profile.MonthlyFee
		existing.Advance = profile.Advance
		existing.Profit = profile.Profit
		r.state.profiles[id] = existing
		*profile = existing
		return false, nil
	}
	r.state.nextID++
	profile.ID = r.state.nextID
	r.state.profiles[profile.ID] = *profile
	return true, nil
}

func (r *MemoryRepository) SaveProfile(ctx context.Context, profile *models.BillingProfile) error {
	defer r.lock()()
	if profile.ID == 0 {
		r.state.nextID++
		profile.ID = r.state.nextID
	}
	r.state.profiles[profile.ID] = *profile
	return nil
}

func (r *MemoryRepository) DeleteProfile(ctx context.Context, id uint) error {
	defer r.lock()()
	if _, ok := r.state.profiles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.state.profiles, id)
	return nil
}

func (r *MemoryRepository) CreateMonthlyRecordIfNotExists(ctx context.Context, record *models.MonthlyBillingRecord) (bool, error) {
	defer r.lock()()
	key := recordKey(record.ProfileID, record.MonthYear)
	if existing, ok := r.state.records[key]; ok {
		*record = existing
		return false, nil
	}
	r.state.nextID++
	record.ID = r.state.nextID
	r.state.records[key] = *record
	return true, nil
}

func (r *MemoryRepository) GetMonthlyRecord(ctx context.Context, profileID uint, monthYear string) (*models.MonthlyBillingRecord, error) {
	defer r.lock()()
	rec, ok := r.state.records[recordKey(profileID, monthYear)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rec, nil
}

func (r *MemoryRepository) SaveMonthlyRecord(ctx context.Context, record *models.MonthlyBillingRecord) error {
	defer r.lock()()
	r.state.records[recordKey(record.ProfileID, record.MonthYear)] = *record
	return nil
}

func (r *MemoryRepository) ListMonthlyRecords(ctx context.Context, monthYear string) ([]models.MonthlyBillingRecord, error) {
	defer r.lock()()
	var out []models.MonthlyBillingRecord
	for _, rec := range r.state.records {
		if rec.MonthYear == monthYear {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProfileID < out[j].ProfileID })
	return out, nil
}

func (r *MemoryRepository) ListMonthlyRecordsByProfile(ctx context.Context, profileID uint) ([]models.MonthlyBillingRecord, error) {
	defer r.lock()()
	var out []models.MonthlyBillingRecord
	for _, rec := range r.state.records {
		if rec.ProfileID == profileID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthYear > out[j].MonthYear })
	return out, nil
}

func (r *MemoryRepository) DeleteMonthlyRecordsByProfile(ctx context.Context, profileID uint) (int64, error) {
	defer r.lock()()
	var n int64
	for key, rec := range r.state.records {
		if rec.ProfileID == profileID {
			delete(r.state.records, key)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) CreatePayment(ctx context.Context, entry *models.PaymentLedgerEntry) error {
	defer r.lock()()
	r.state.nextID++
	entry.ID = r.state.nextID
	r.state.payments = append(r.state.payments, *entry)
	return nil
}

func (r *MemoryRepository) ListPaymentsByProfile(ctx context.Context, profileID uint) ([]models.PaymentLedgerEntry, error) {
	defer r.lock()()
	var out []models.PaymentLedgerEntry
	for i := len(r.state.payments) - 1; i >= 0; i-- {
		if p := r.state.payments[i]; p.ProfileID == profileID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListPaymentsBetween(ctx context.Context, start, end time.Time) ([]models.PaymentLedgerEntry, error) {
	defer r.lock()()
	var out []models.PaymentLedgerEntry
	for _, p := range r.state.payments {
		if !p.CreatedAt.Before(start) && !p.CreatedAt.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}
