// Package seed loads the demo dataset used for local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"powerbill/internal/domain"
	"powerbill/internal/password"
	"powerbill/internal/repository"
)

// SampleUser pairs an account with its billing history and plain password.
type SampleUser struct {
	User     domain.User
	Password string
	Bills    []domain.Bill
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

// Users returns the demo accounts: one with a paid and an unpaid bill, one
// with a single unpaid bill, and one with no billing history at all.
func Users() []SampleUser {
	return []SampleUser{
		{
			User: domain.User{
				Name: "Sandhya Sinha", Email: "sandhya.sinha@gmail.com",
				Phone: "9876543210", ConsumerID: "MH78901234", MeterNumber: "METR456789",
				SupplyType: "Domestic - 1 Phase", SanctionedLoad: "4 kW",
			},
			Password: "password123",
			Bills: []domain.Bill{
				{
					PeriodStart: date(2025, time.January, 15), PeriodEnd: date(2025, time.February, 14),
					DueDate: date(2025, time.February, 28), UnitsConsumed: 210,
					EnergyCharges: 1165.00, FixedCharges: 90.00, FuelSurcharge: 55.80,
					TaxAmount: 100.50, SubsidyAmount: 250.00, NetAmount: 1161.30,
					Status:      domain.BillStatusPaid,
					PaymentDate: ptr(time.Date(2025, time.February, 20, 10, 30, 0, 0, time.UTC)),
					Slabs: []domain.BillSlab{
						{Range: "0-100 Units", Rate: 4.50, Units: 100, Amount: 450.00},
						{Range: "101-200 Units", Rate: 6.50, Units: 100, Amount: 650.00},
						{Range: "201-500 Units", Rate: 6.50, Units: 10, Amount: 65.00},
					},
				},
				{
					PeriodStart: date(2025, time.February, 15), PeriodEnd: date(2025, time.March, 15),
					DueDate: date(2025, time.March, 25), UnitsConsumed: 750,
					EnergyCharges: 6025.00, FixedCharges: 100.00, FuelSurcharge: 225.75,
					TaxAmount: 380.00, SubsidyAmount: 3480.00, NetAmount: 3250.75,
					Status: domain.BillStatusUnpaid,
					Slabs: []domain.BillSlab{
						{Range: "0-100 Units", Rate: 4.50, Units: 100, Amount: 450.00},
						{Range: "101-200 Units", Rate: 6.50, Units: 100, Amount: 650.00},
						{Range: "201-500 Units", Rate: 8.50, Units: 300, Amount: 2550.00},
						{Range: "Above 500 Units", Rate: 9.50, Units: 250, Amount: 2375.00},
					},
				},
			},
		},
		{
			User: domain.User{
				Name: "Shashank Shekhar", Email: "shashank.shekhar@gmail.com",
				Phone: "9123456780", ConsumerID: "DL11223344", MeterNumber: "METR112233",
				SupplyType: "Domestic - 3 Phase", SanctionedLoad: "8 kW",
			},
			Password: "pass4567",
			Bills: []domain.Bill{
				{
					PeriodStart: date(2025, time.February, 5), PeriodEnd: date(2025, time.March, 4),
					DueDate: date(2025, time.March, 20), UnitsConsumed: 480,
					EnergyCharges: 3660.00, FixedCharges: 150.00, FuelSurcharge: 195.50,
					TaxAmount: 290.25, SubsidyAmount: 600.00, NetAmount: 3695.75,
					Status: domain.BillStatusUnpaid,
					Slabs: []domain.BillSlab{
						{Range: "0-150 Units", Rate: 5.50, Units: 150, Amount: 825.00},
						{Range: "151-300 Units", Rate: 7.50, Units: 150, Amount: 1125.00},
						{Range: "301-600 Units", Rate: 9.50, Units: 180, Amount: 1710.00},
					},
				},
			},
		},
		{
			User: domain.User{
				Name: "Harshit Sharma", Email: "harshit.sharma@gmail.com",
				Phone: "7778889990", ConsumerID: "UP987654", MeterNumber: "METR998877",
				SupplyType: "Domestic - 1 Phase", SanctionedLoad: "3 kW",
			},
			Password: "pass1234",
		},
	}
}

// Load inserts the demo dataset through the repositories. Accounts that
// already exist are skipped so the seeder can be re-run.
func Load(ctx context.Context, users repository.UserRepository, bills repository.BillRepository) error {
	for _, sample := range Users() {
		user := sample.User

		hash, err := password.Hash(sample.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", user.Email, err)
		}
		user.PasswordHash = hash

		userID, err := users.Create(ctx, &user)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return fmt.Errorf("insert user %s: %w", user.Email, err)
		}

		for _, bill := range sample.Bills {
			bill.UserID = userID
			if _, err := bills.Create(ctx, &bill); err != nil {
				return fmt.Errorf("insert bill for %s: %w", user.Email, err)
			}
		}
	}
	return nil
}
