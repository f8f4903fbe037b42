package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"powerbill/internal/domain"
	"powerbill/internal/password"
	"powerbill/internal/repository"
)

var (
	// ErrMissingFields indicates a required signup/signin field was absent.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrDuplicateUser is returned when the email or consumer id is taken.
	ErrDuplicateUser = errors.New("email or consumer id already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when a session references a missing user.
	ErrUserNotFound = errors.New("user not found")
)

// SignUpInput carries the registration fields after JSON decoding.
type SignUpInput struct {
	Name           string
	Email          string
	Password       string
	Phone          string
	ConsumerID     string
	MeterNumber    string
	SupplyType     string
	SanctionedLoad string
}

// UserService describes account lifecycle operations.
type UserService interface {
	// SignUp validates and registers a new account. It does not sign the
	// account in.
	SignUp(ctx context.Context, in SignUpInput) (int64, error)
	// Authenticate verifies credentials and returns the matching user with
	// the password hash stripped.
	Authenticate(ctx context.Context, email, plain string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) SignUp(ctx context.Context, in SignUpInput) (int64, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.ConsumerID = strings.TrimSpace(in.ConsumerID)

	if in.Name == "" || in.Email == "" || in.Password == "" || in.Phone == "" || in.ConsumerID == "" {
		return 0, ErrMissingFields
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return 0, ErrInvalidEmail
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   hash,
		Phone:          in.Phone,
		ConsumerID:     in.ConsumerID,
		MeterNumber:    in.MeterNumber,
		SupplyType:     in.SupplyType,
		SanctionedLoad: in.SanctionedLoad,
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return 0, ErrDuplicateUser
		}
		return 0, err
	}
	return id, nil
}

func (s *userService) Authenticate(ctx context.Context, email, plain string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plain == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// indistinguishable from a wrong password
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := password.Verify(plain, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone
}
