package domain

import "time"

// BillStatus is the payment state of a bill.
type BillStatus string

const (
	BillStatusUnpaid BillStatus = "unpaid"
	BillStatusPaid   BillStatus = "paid"
	// BillStatusNone is reported when a user has no bills at all.
	BillStatusNone BillStatus = "none"
)

// Bill represents one billing cycle for a user. Monetary components are
// pre-computed upstream; NetAmount is authoritative and is never recomputed
// from the components at read time. SubsidyAmount is stored as a positive
// reduction.
type Bill struct {
	ID            int64
	UserID        int64
	PeriodStart   time.Time
	PeriodEnd     time.Time
	DueDate       time.Time
	UnitsConsumed int
	EnergyCharges float64
	FixedCharges  float64
	FuelSurcharge float64
	TaxAmount     float64
	SubsidyAmount float64
	NetAmount     float64
	Status        BillStatus
	PaymentDate   *time.Time
	Slabs         []BillSlab
}

// BillSlab is one tiered-rate line item of a bill. Slab order (lowest tier
// first) follows insertion order.
type BillSlab struct {
	ID     int64
	BillID int64
	Range  string
	Rate   float64
	Units  int
	Amount float64
}

// ConsumptionPoint is one month of a user's consumption trend.
type ConsumptionPoint struct {
	PeriodEnd time.Time
	Units     int
}
