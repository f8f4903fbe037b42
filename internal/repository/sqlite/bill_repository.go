package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"powerbill/internal/domain"
	"powerbill/internal/repository"
)

const (
	createBillsTable = `
CREATE TABLE IF NOT EXISTS bills (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	bill_period_start DATETIME NOT NULL,
	bill_period_end DATETIME NOT NULL,
	due_date DATETIME NOT NULL,
	units_consumed INTEGER NOT NULL DEFAULT 0,
	energy_charges REAL NOT NULL DEFAULT 0,
	fixed_charges REAL NOT NULL DEFAULT 0,
	fuel_surcharge REAL NOT NULL DEFAULT 0,
	tax_amount REAL NOT NULL DEFAULT 0,
	subsidy_amount REAL NOT NULL DEFAULT 0,
	net_amount REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'unpaid',
	payment_date DATETIME NULL,
	CHECK (bill_period_end > bill_period_start)
);
`
	createBillSlabsTable = `
CREATE TABLE IF NOT EXISTS bill_slabs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bill_id INTEGER NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
	slab_range TEXT NOT NULL,
	rate REAL NOT NULL,
	units INTEGER NOT NULL,
	amount REAL NOT NULL
);
`

	selectBillColumns = `
SELECT id, user_id, bill_period_start, bill_period_end, due_date, units_consumed,
	energy_charges, fixed_charges, fuel_surcharge, tax_amount, subsidy_amount,
	net_amount, status, payment_date
FROM bills`
)

type BillRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) repository.BillRepository {
	return &BillRepository{db: db}
}

func (r *BillRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBillsTable); err != nil {
		return fmt.Errorf("create bills table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createBillSlabsTable); err != nil {
		return fmt.Errorf("create bill_slabs table: %w", err)
	}
	return nil
}

func (r *BillRepository) Create(ctx context.Context, bill *domain.Bill) (int64, error) {
	if !bill.PeriodEnd.After(bill.PeriodStart) {
		return 0, fmt.Errorf("bill period end must be later than period start")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bill tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO bills (user_id, bill_period_start, bill_period_end, due_date, units_consumed, energy_charges, fixed_charges, fuel_surcharge, tax_amount, subsidy_amount, net_amount, status, payment_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.UserID,
		bill.PeriodStart,
		bill.PeriodEnd,
		bill.DueDate,
		bill.UnitsConsumed,
		bill.EnergyCharges,
		bill.FixedCharges,
		bill.FuelSurcharge,
		bill.TaxAmount,
		bill.SubsidyAmount,
		bill.NetAmount,
		string(bill.Status),
		bill.PaymentDate,
	)
	if err != nil {
		return 0, fmt.Errorf("insert bill: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("bill last insert id: %w", err)
	}
	bill.ID = id

	for i := range bill.Slabs {
		slab := &bill.Slabs[i]
		slab.BillID = id
		slabRes, err := tx.ExecContext(ctx, `
INSERT INTO bill_slabs (bill_id, slab_range, rate, units, amount)
VALUES (?, ?, ?, ?, ?)`,
			slab.BillID,
			slab.Range,
			slab.Rate,
			slab.Units,
			slab.Amount,
		)
		if err != nil {
			return 0, fmt.Errorf("insert bill slab: %w", err)
		}
		if slab.ID, err = slabRes.LastInsertId(); err != nil {
			return 0, fmt.Errorf("bill slab last insert id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bill tx: %w", err)
	}
	return id, nil
}

func (r *BillRepository) GetLatest(ctx context.Context, userID int64) (*domain.Bill, error) {
	row := r.db.QueryRowContext(ctx, selectBillColumns+`
WHERE user_id = ?
ORDER BY bill_period_end DESC
LIMIT 1`,
		userID,
	)

	bill, err := scanBill(row)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// no bills is a normal state for a fresh account
			return nil, nil
		}
		return nil, err
	}
	return bill, nil
}

func (r *BillRepository) ListSlabs(ctx context.Context, billID int64) ([]domain.BillSlab, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, bill_id, slab_range, rate, units, amount
FROM bill_slabs
WHERE bill_id = ?
ORDER BY id ASC`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("query bill slabs: %w", err)
	}
	defer rows.Close()

	slabs := make([]domain.BillSlab, 0)
	for rows.Next() {
		var slab domain.BillSlab
		if err := rows.Scan(&slab.ID, &slab.BillID, &slab.Range, &slab.Rate, &slab.Units, &slab.Amount); err != nil {
			return nil, fmt.Errorf("scan bill slab: %w", err)
		}
		slabs = append(slabs, slab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bill slabs: %w", err)
	}
	return slabs, nil
}

func (r *BillRepository) RecentConsumption(ctx context.Context, userID int64, limit int) ([]domain.ConsumptionPoint, error) {
	if limit <= 0 {
		return []domain.ConsumptionPoint{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT bill_period_end, units_consumed
FROM bills
WHERE user_id = ?
ORDER BY bill_period_end DESC
LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent consumption: %w", err)
	}
	defer rows.Close()

	points := make([]domain.ConsumptionPoint, 0, limit)
	for rows.Next() {
		var point domain.ConsumptionPoint
		if err := rows.Scan(&point.PeriodEnd, &point.Units); err != nil {
			return nil, fmt.Errorf("scan consumption point: %w", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consumption points: %w", err)
	}
	return points, nil
}

func scanBill(row *sql.Row) (*domain.Bill, error) {
	var (
		bill   domain.Bill
		status string
		paidAt sql.NullTime
	)
	if err := row.Scan(
		&bill.ID,
		&bill.UserID,
		&bill.PeriodStart,
		&bill.PeriodEnd,
		&bill.DueDate,
		&bill.UnitsConsumed,
		&bill.EnergyCharges,
		&bill.FixedCharges,
		&bill.FuelSurcharge,
		&bill.TaxAmount,
		&bill.SubsidyAmount,
		&bill.NetAmount,
		&status,
		&paidAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan bill: %w", err)
	}
	bill.Status = domain.BillStatus(status)
	if paidAt.Valid {
		t := paidAt.Time
		bill.PaymentDate = &t
	}
	return &bill, nil
}
