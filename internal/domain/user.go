package domain

import "time"

// User represents one account holder of the billing portal.
type User struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	Phone          string
	ConsumerID     string
	MeterNumber    string
	SupplyType     string
	SanctionedLoad string
	CreatedAt      time.Time
}
