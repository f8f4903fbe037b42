package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"powerbill/internal/domain"
	"powerbill/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	phone TEXT NOT NULL,
	consumer_id TEXT NOT NULL UNIQUE,
	meter_number TEXT NOT NULL DEFAULT '',
	supply_type TEXT NOT NULL DEFAULT '',
	sanctioned_load TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (name, email, password_hash, phone, consumer_id, meter_number, supply_type, sanctioned_load, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.ConsumerID,
		user.MeterNumber,
		user.SupplyType,
		user.SanctionedLoad,
		user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, fmt.Errorf("insert user: %w", repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, phone, consumer_id, meter_number, supply_type, sanctioned_load, created_at
FROM users
WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, phone, consumer_id, meter_number, supply_type, sanctioned_load, created_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.ConsumerID,
		&user.MeterNumber,
		&user.SupplyType,
		&user.SanctionedLoad,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
