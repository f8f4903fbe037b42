package repository

import (
	"context"

	"powerbill/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	// Create inserts the user and returns the new id. ErrDuplicate is
	// returned when the email or consumer id is already registered.
	Create(ctx context.Context, user *domain.User) (int64, error)
	// GetByEmail looks a user up case-insensitively by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
