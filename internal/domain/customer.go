package domain

import "time"

// Customer is a registered shop account.
type Customer struct {
	ID           string
	CustomerID   string
	Username     string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordResetOTP is a one-time code sent to a customer's phone.
type PasswordResetOTP struct {
	ID         string
	CustomerID string
	Phone      string
	Code       string
	ExpiresAt  time.Time
	UsedAt     *time.Time
	CreatedAt  time.Time
}

// Usable reports whether the code can still be redeemed at now.
func (o *PasswordResetOTP) Usable(now time.Time) bool {
	return o.UsedAt == nil && now.Before(o.ExpiresAt)
}
