package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/FeeFox/app/models"
)

// failingRepository injects write failures into every repository handed out,
// including the transactional one.
type failingRepository struct {
	Repository
	failPayment       error
	failMonthlyUpdate error
}

func (f *failingRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	return f.Repository.WithTx(ctx, func(tx Repository) error {
		return fn(&failingRepository{Repository: tx, failPayment: f.failPayment, failMonthlyUpdate: f.failMonthlyUpdate})
	})
}

func (f *failingRepository) CreatePayment(ctx context.Context, entry *models.PaymentLedgerEntry) error {
	if f.failPayment != nil {
		return f.failPayment
	}
	return f.Repository.CreatePayment(ctx, entry)
}

func (f *failingRepository) SaveMonthlyRecord(ctx context.Context, record *models.MonthlyBillingRecord) error {
	if f.failMonthlyUpdate != nil {
		return f.failMonthlyUpdate
	}
	return f.Repository.SaveMonthlyRecord(ctx, record)
}

var fixedNow = time.Date(2024, time.February, 10, 15, 30, 0, 0, time.UTC)

func newTestService(repo Repository, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(repo, opts...)
}

func seedProfile(t *testing.T, repo *MemoryRepository, balance, fee string) *models.BillingProfile {
	t.Helper()
	p := &models.BillingProfile{
		ExternalID: "C-" + balance + "-" + fee,
		Name:       "Alice",
		MonthlyFee: decimal.RequireFromString(fee),
		Balance:    decimal.RequireFromString(balance),
	}
	require.NoError(t, repo.SaveProfile(context.Background(), p))
	return p
}

var staff = Actor{UserID: 7, Name: "Employee One"}

func TestRecordPayment_WritesLedgerAndProfile(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	p := seedProfile(t, repo, "100", "50")

	entry, err := svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: p.ID, Amount: d("120"), Method: "Cash", PayerName: " Alice "})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.Reference)
	assert.Equal(t, "cash", entry.Method)
	assert.Equal(t, "Alice", entry.PayerName)
	assert.Equal(t, "2024-02", entry.MonthYear)
	assert.Equal(t, uint(7), entry.CollectedByID)
	assert.True(t, entry.BalanceBefore.Equal(d("100")))
	assert.True(t, entry.BalanceAfter.Equal(d("0")))
	assert.True(t, entry.FeeAfter.Equal(d("30")))
	assert.False(t, entry.IsPaid)
	assert.Equal(t, fixedNow, entry.CreatedAt)

	stored, err := svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, entry.BalanceAfter.Equal(stored.Balance))
	assert.True(t, stored.MonthlyFee.Equal(d("30")))
	assert.False(t, stored.Paid)

	entry, err = svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: p.ID, Amount: d("30"), Method: "bank", PayerName: "Alice"})
	require.NoError(t, err)
	assert.True(t, entry.IsPaid)

	stored, _ = svc.GetProfile(ctx, p.ID)
	assert.True(t, stored.Paid)
	assert.True(t, stored.TotalOwed().IsZero())

	payments, err := svc.ListPayments(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestRecordPayment_AppliesToCurrentMonthlyRecord(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	p := seedProfile(t, repo, "0", "50")

	_, created, err := svc.GenerateMonthlyEntry(ctx, p)
	require.NoError(t, err)
	require.True(t, created)

	_, err = svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: p.ID, Amount: d("20"), Method: "mobile", PayerName: "Alice"})
	require.NoError(t, err)

	rec, err := repo.GetMonthlyRecord(ctx, p.ID, "2024-02")
	require.NoError(t, err)
	assert.True(t, rec.Balance.Equal(d("30")))
	assert.False(t, rec.IsPaid)
	assert.Nil(t, rec.PaidAt)

	_, err = svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: p.ID, Amount: d("30"), Method: "mobile", PayerName: "Alice"})
	require.NoError(t, err)

	rec, _ = repo.GetMonthlyRecord(ctx, p.ID, "2024-02")
	assert.True(t, rec.Balance.IsZero())
	assert.True(t, rec.IsPaid)
	require.NotNil(t, rec.PaidAt)
	assert.Equal(t, fixedNow, *rec.PaidAt)
}

func TestRecordPayment_ArrearsDoNotPayMonthlyRecord(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	p := seedProfile(t, repo, "100", "50")

	_, created, err := svc.GenerateMonthlyEntry(ctx, p)
	require.NoError(t, err)
	require.True(t, created)

	entry, err := svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: p.ID, Amount: d("100"), Method: "cash", PayerName: "Alice"})
	require.NoError(t, err)
	assert.False(t, entry.IsPaid)

	rec, err := repo.GetMonthlyRecord(ctx, p.ID, "2024-02")
	require.NoError(t, err)
	assert.True(t, rec.Balance.Equal(d("50")), "record balance %s", rec.Balance)
	assert.False(t, rec.IsPaid)
	assert.Nil(t, rec.PaidAt)

	report, _, err := svc.MonthlyReport(ctx, "2024-02")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Unpaid)
	assert.True(t, report.TotalOutstanding.Equal(d("50")))

	_, err = svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: p.ID, Amount: d("20"), Method: "cash", PayerName: "Alice"})
	require.NoError(t, err)
	rec, _ = repo.GetMonthlyRecord(ctx, p.ID, "2024-02")
	assert.True(t, rec.Balance.Equal(d("30")))
	assert.False(t, rec.IsPaid)

	entry, err = svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: p.ID, Amount: d("30"), Method: "cash", PayerName: "Alice"})
	require.NoError(t, err)
	assert.True(t, entry.IsPaid)

	rec, _ = repo.GetMonthlyRecord(ctx, p.ID, "2024-02")
	stored, err := svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Balance.IsZero())
	assert.Equal(t, stored.Paid, rec.IsPaid)
	assert.True(t, rec.IsPaid)
}

func TestRecordPayment_Validation(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	p := seedProfile(t, repo, "100", "50")

	tests := []struct {
		name string
		in   PaymentInput
		want error
	}{
		{name: "negative", in: PaymentInput{ProfileID: p.ID, Amount: d("-1"), Method: "cash", PayerName: "A"}, want: ErrInvalidAmount},
		{name: "overpayment", in: PaymentInput{ProfileID: p.ID, Amount: d("151"), Method: "cash", PayerName: "A"}, want: ErrAmountExceedsOwed},
		{name: "method", in: PaymentInput{ProfileID: p.ID, Amount: d("1"), Method: "cheque", PayerName: "A"}, want: ErrInvalidMethod},
		{name: "payer", in: PaymentInput{ProfileID: p.ID, Amount: d("1"), Method: "cash", PayerName: " "}, want: ErrMissingPayer},
		{name: "unknown profile", in: PaymentInput{ProfileID: 999, Amount: d("1"), Method: "cash", PayerName: "A"}, want: ErrProfileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordPayment(ctx, staff, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	payments, _ := svc.ListPayments(ctx, p.ID)
	assert.Empty(t, payments)
	stored, _ := svc.GetProfile(ctx, p.ID)
	assert.True(t, stored.Balance.Equal(d("100")))
}

func TestRecordPayment_RollsBackOnFailedWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("ledger write fails", func(t *testing.T) {
		repo := NewMemoryRepository()
		svc := newTestService(&failingRepository{Repository: repo, failPayment: errors.New("disk full")})
		p := seedProfile(t, repo, "100", "50")

		_, err := svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: p.ID, Amount: d("50"), Method: "cash", PayerName: "A"})
		require.Error(t, err)

		stored, _ := svc.GetProfile(ctx, p.ID)
		assert.True(t, stored.Balance.Equal(d("100")))
	})

	t.Run("monthly update fails after profile write", func(t *testing.T) {
		repo := NewMemoryRepository()
		p := seedProfile(t, repo, "100", "50")
		_, _, err := newTestService(repo).GenerateMonthlyEntry(ctx, p)
		require.NoError(t, err)
		svc := newTestService(&failingRepository{Repository: repo, failMonthlyUpdate: errors.New("lock wait timeout")})

		_, err = svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: p.ID, Amount: d("50"), Method: "cash", PayerName: "A"})
		require.Error(t, err)
		assert.False(t, IsValidationError(err))

		stored, _ := svc.GetProfile(ctx, p.ID)
		assert.True(t, stored.Balance.Equal(d("100")))
		payments, _ := svc.ListPayments(ctx, p.ID)
		assert.Empty(t, payments)
	})
}

func TestRecordPayment_LegacyPaidRule(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, WithPaidRule(PaidRuleLegacyFullPayment))
	p := seedProfile(t, repo, "100", "50")

	entry, err := svc.RecordPayment(context.Background(), staff, PaymentInput{ProfileID: p.ID, Amount: d("100"), Method: "cash", PayerName: "A"})
	require.NoError(t, err)
	assert.True(t, entry.IsPaid)
	assert.True(t, entry.FeeAfter.Equal(d("50")))
}

func TestGenerateMonthlyEntry(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	p := seedProfile(t, repo, "0", "500")
	p.Advance = d("100")

	rec, created, err := svc.GenerateMonthlyEntry(ctx, p)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2024-02", rec.MonthYear)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), rec.StartDate)
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC), rec.EndDate)
	assert.True(t, rec.Fee.Equal(d("500")))
	assert.True(t, rec.Balance.Equal(rec.Fee))
	assert.True(t, rec.Advance.Equal(d("100")))
	assert.False(t, rec.IsPaid)

	again, created, err := svc.GenerateMonthlyEntry(ctx, p)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, again.ID)

	_, _, err = svc.GenerateMonthlyEntry(ctx, nil)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGenerateMonthlyEntry_Concurrent(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	p := seedProfile(t, repo, "0", "500")

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := svc.GenerateMonthlyEntry(context.Background(), p)
			assert.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount)
	recs, _ := repo.ListMonthlyRecordsByProfile(context.Background(), p.ID)
	assert.Len(t, recs, 1)
}

func TestGenerateMonthlyEntries(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	first := seedProfile(t, repo, "0", "100")
	seedProfile(t, repo, "0", "200")
	_, _, err := svc.GenerateMonthlyEntry(ctx, first)
	require.NoError(t, err)

	res, err := svc.GenerateMonthlyEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-02", res.MonthYear)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Existing)
	assert.Equal(t, 0, res.Failed)
}

func TestImportProfiles(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	rows := []map[string]any{
		{"UserId": "C-1", "userName": "Alice", "MonthlyFee": "500", "balance": "200"},
		{"user_id": "C-2", "Name": "Bob", "fee": 300},
		{"address": "nowhere"},
		{"id": "C-3", "name": "Carol", "bill": "-5"},
	}

	res, err := svc.ImportProfiles(ctx, rows, true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 2, res.MonthlyCreated)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 4, res.Errors[0].Row)
	assert.Equal(t, 5, res.Errors[1].Row)

	// a re-import updates descriptive fields but keeps collected balances
	res, err = svc.ImportProfiles(ctx, []map[string]any{{"UserId": "C-1", "userName": "Alice B", "MonthlyFee": "600", "balance": "999"}}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 0, res.MonthlyCreated)

	profiles, _ := svc.ListProfiles(ctx, "C-1", 0, 0)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Alice B", profiles[0].Name)
	assert.True(t, profiles[0].MonthlyFee.Equal(d("600")))
	assert.True(t, profiles[0].Balance.Equal(d("200")))
}

func TestDeleteProfile_RemovesMonthlyRecords(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	p := seedProfile(t, repo, "100", "50")
	_, _, err := svc.GenerateMonthlyEntry(ctx, p)
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: p.ID, Amount: d("10"), Method: "cash", PayerName: "A"})
	require.NoError(t, err)

	removed, err := svc.DeleteProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = svc.GetProfile(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	payments, _ := svc.ListPayments(ctx, p.ID)
	assert.Len(t, payments, 1)

	_, err = svc.DeleteProfile(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUpdateProfile(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	p := seedProfile(t, repo, "100", "50")

	updated, err := svc.UpdateProfile(ctx, p.ID, models.BillingProfile{Name: "Alice X", MonthlyFee: d("75"), Balance: d("0")})
	require.NoError(t, err)
	assert.Equal(t, "Alice X", updated.Name)
	assert.True(t, updated.MonthlyFee.Equal(d("75")))
	assert.True(t, updated.Balance.Equal(d("100")))

	_, err = svc.UpdateProfile(ctx, p.ID, models.BillingProfile{MonthlyFee: d("-1")})
	assert.ErrorIs(t, err, ErrNegativeFee)
}

func TestMonthlyReport(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	a := seedProfile(t, repo, "0", "100")
	b := seedProfile(t, repo, "0", "200")
	_, err := svc.GenerateMonthlyEntries(ctx)
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: a.ID, Amount: d("100"), Method: "cash", PayerName: "A"})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, staff, PaymentInput{ProfileID: b.ID, Amount: d("50"), Method: "bank", PayerName: "B"})
	require.NoError(t, err)

	report, records, err := svc.MonthlyReport(ctx, "2024-02")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, 1, report.Paid)
	assert.Equal(t, 1, report.Unpaid)
	assert.True(t, report.TotalFee.Equal(d("300")))
	assert.True(t, report.TotalOutstanding.Equal(d("150")))
	assert.True(t, report.TotalCollected.Equal(d("150")))
	assert.True(t, report.CollectedBy["cash"].Equal(d("100")))
	assert.True(t, report.CollectedBy["bank"].Equal(d("50")))
	assert.True(t, report.CollectedBy["mobile"].IsZero())

	_, _, err = svc.MonthlyReport(ctx, "2024-13")
	assert.ErrorIs(t, err, ErrInvalidMonth)

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dash.Profiles)
	assert.Equal(t, 1, dash.UnpaidThisMonth)
	assert.Equal(t, 2, dash.PaymentsMonth)
}
