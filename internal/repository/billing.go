package repository

import (
	"context"

	"powerbill/internal/domain"
)

// BillRepository exposes persistence operations for Bill aggregates.
type BillRepository interface {
	Init(ctx context.Context) error
	// Create inserts the bill together with its slabs in one transaction
	// and returns the new bill id. Slab insertion order is preserved.
	Create(ctx context.Context, bill *domain.Bill) (int64, error)
	// GetLatest returns the bill with the latest period end for the user,
	// or (nil, nil) when the user has no bills. A missing bill is a normal
	// state, not an error.
	GetLatest(ctx context.Context, userID int64) (*domain.Bill, error)
	// ListSlabs returns the slabs of a bill ordered lowest tier first.
	// A bill without slabs yields an empty slice.
	ListSlabs(ctx context.Context, billID int64) ([]domain.BillSlab, error)
	// RecentConsumption returns up to limit consumption points ordered
	// newest first. Callers that present a chronological trend must
	// reverse the result exactly once.
	RecentConsumption(ctx context.Context, userID int64, limit int) ([]domain.ConsumptionPoint, error)
}
