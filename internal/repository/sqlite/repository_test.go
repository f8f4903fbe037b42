package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"powerbill/internal/domain"
	"powerbill/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func initRepos(t *testing.T) (repository.UserRepository, repository.BillRepository) {
	t.Helper()
	db := openTestDB(t)
	users := NewUserRepository(db)
	bills := NewBillRepository(db)
	require.NoError(t, users.Init(context.Background()))
	require.NoError(t, bills.Init(context.Background()))
	return users, bills
}

func testUser(email, consumerID string) *domain.User {
	return &domain.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		Phone:        "9876543210",
		ConsumerID:   consumerID,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testBill(userID int64, start, end time.Time, units int) *domain.Bill {
	return &domain.Bill{
		UserID:        userID,
		PeriodStart:   start,
		PeriodEnd:     end,
		DueDate:       end.AddDate(0, 0, 10),
		UnitsConsumed: units,
		EnergyCharges: 100,
		NetAmount:     110,
		Status:        domain.BillStatusUnpaid,
	}
}

func TestUserCreateAndGet(t *testing.T) {
	users, _ := initRepos(t)
	ctx := context.Background()

	id, err := users.Create(ctx, testUser("Amit@Example.com", "MH0001"))
	require.NoError(t, err)
	require.Positive(t, id)

	// lookup is case-insensitive
	byEmail, err := users.GetByEmail(ctx, "amit@example.COM")
	require.NoError(t, err)
	require.Equal(t, id, byEmail.ID)
	require.Equal(t, "amit@example.com", byEmail.Email)

	byID, err := users.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "MH0001", byID.ConsumerID)
}

func TestUserNotFound(t *testing.T) {
	users, _ := initRepos(t)
	ctx := context.Background()

	_, err := users.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = users.GetByID(ctx, 12345)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserDuplicate(t *testing.T) {
	users, _ := initRepos(t)
	ctx := context.Background()

	_, err := users.Create(ctx, testUser("dup@example.com", "MH0002"))
	require.NoError(t, err)

	_, err = users.Create(ctx, testUser("dup@example.com", "MH9999"))
	require.ErrorIs(t, err, repository.ErrDuplicate, "duplicate email")

	_, err = users.Create(ctx, testUser("other@example.com", "MH0002"))
	require.ErrorIs(t, err, repository.ErrDuplicate, "duplicate consumer id")
}

func TestBillLatestSelection(t *testing.T) {
	users, bills := initRepos(t)
	ctx := context.Background()

	userID, err := users.Create(ctx, testUser("bills@example.com", "MH0003"))
	require.NoError(t, err)

	// inserted out of chronological order on purpose
	_, err = bills.Create(ctx, testBill(userID, day(2025, 2, 15), day(2025, 3, 15), 750))
	require.NoError(t, err)
	_, err = bills.Create(ctx, testBill(userID, day(2025, 1, 15), day(2025, 2, 14), 210))
	require.NoError(t, err)

	latest, err := bills.GetLatest(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, 750, latest.UnitsConsumed)
	require.True(t, latest.PeriodEnd.Equal(day(2025, 3, 15)))
}

func TestBillLatestNoBills(t *testing.T) {
	users, bills := initRepos(t)
	ctx := context.Background()

	userID, err := users.Create(ctx, testUser("fresh@example.com", "MH0004"))
	require.NoError(t, err)

	latest, err := bills.GetLatest(ctx, userID)
	require.NoError(t, err)
	require.Nil(t, latest, "no bills is a normal state, not an error")
}

func TestBillPeriodOrderingEnforced(t *testing.T) {
	users, bills := initRepos(t)
	ctx := context.Background()

	userID, err := users.Create(ctx, testUser("badperiod@example.com", "MH0005"))
	require.NoError(t, err)

	_, err = bills.Create(ctx, testBill(userID, day(2025, 3, 15), day(2025, 2, 15), 100))
	require.Error(t, err, "period end before period start must be rejected")
}

func TestSlabOrderAndValuesPreserved(t *testing.T) {
	users, bills := initRepos(t)
	ctx := context.Background()

	userID, err := users.Create(ctx, testUser("slabs@example.com", "MH0006"))
	require.NoError(t, err)

	bill := testBill(userID, day(2025, 2, 15), day(2025, 3, 15), 750)
	bill.Slabs = []domain.BillSlab{
		{Range: "0-100 Units", Rate: 4.50, Units: 100, Amount: 450.00},
		{Range: "101-200 Units", Rate: 6.50, Units: 100, Amount: 650.00},
		{Range: "201-500 Units", Rate: 8.50, Units: 300, Amount: 2550.00},
		{Range: "Above 500 Units", Rate: 9.50, Units: 250, Amount: 2375.00},
	}
	billID, err := bills.Create(ctx, bill)
	require.NoError(t, err)

	slabs, err := bills.ListSlabs(ctx, billID)
	require.NoError(t, err)
	require.Len(t, slabs, 4)
	for i, want := range bill.Slabs {
		require.Equal(t, want.Range, slabs[i].Range)
		require.Equal(t, want.Rate, slabs[i].Rate)
		require.Equal(t, want.Units, slabs[i].Units)
		require.Equal(t, want.Amount, slabs[i].Amount)
	}
}

func TestSlabsEmptyForSlablessBill(t *testing.T) {
	users, bills := initRepos(t)
	ctx := context.Background()

	userID, err := users.Create(ctx, testUser("noslabs@example.com", "MH0007"))
	require.NoError(t, err)

	billID, err := bills.Create(ctx, testBill(userID, day(2025, 2, 15), day(2025, 3, 15), 100))
	require.NoError(t, err)

	slabs, err := bills.ListSlabs(ctx, billID)
	require.NoError(t, err)
	require.NotNil(t, slabs)
	require.Empty(t, slabs)
}

func TestRecentConsumptionNewestFirstAndLimited(t *testing.T) {
	users, bills := initRepos(t)
	ctx := context.Background()

	userID, err := users.Create(ctx, testUser("trend@example.com", "MH0008"))
	require.NoError(t, err)

	months := []struct {
		start, end time.Time
		units      int
	}{
		{day(2024, 12, 1), day(2024, 12, 31), 90},
		{day(2025, 1, 1), day(2025, 1, 31), 120},
		{day(2025, 2, 1), day(2025, 2, 28), 135},
		{day(2025, 3, 1), day(2025, 3, 31), 150},
	}
	for _, m := range months {
		_, err := bills.Create(ctx, testBill(userID, m.start, m.end, m.units))
		require.NoError(t, err)
	}

	points, err := bills.RecentConsumption(ctx, userID, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	require.Equal(t, 150, points[0].Units, "newest first")
	require.Equal(t, 135, points[1].Units)
	require.Equal(t, 120, points[2].Units)
}

func TestRecentConsumptionFewerBillsThanLimit(t *testing.T) {
	users, bills := initRepos(t)
	ctx := context.Background()

	userID, err := users.Create(ctx, testUser("short@example.com", "MH0009"))
	require.NoError(t, err)

	_, err = bills.Create(ctx, testBill(userID, day(2025, 1, 15), day(2025, 2, 14), 210))
	require.NoError(t, err)

	points, err := bills.RecentConsumption(ctx, userID, 3)
	require.NoError(t, err)
	require.Len(t, points, 1)
	require.Equal(t, 210, points[0].Units)
}

func TestPaymentDateRoundTrip(t *testing.T) {
	users, bills := initRepos(t)
	ctx := context.Background()

	userID, err := users.Create(ctx, testUser("paid@example.com", "MH0010"))
	require.NoError(t, err)

	paidAt := time.Date(2025, 2, 20, 10, 30, 0, 0, time.UTC)
	bill := testBill(userID, day(2025, 1, 15), day(2025, 2, 14), 210)
	bill.Status = domain.BillStatusPaid
	bill.PaymentDate = &paidAt
	_, err = bills.Create(ctx, bill)
	require.NoError(t, err)

	latest, err := bills.GetLatest(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, domain.BillStatusPaid, latest.Status)
	require.NotNil(t, latest.PaymentDate)
	require.True(t, latest.PaymentDate.Equal(paidAt))
}
