package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/farm-shop/internal/domain"
)

// OTPRepository manages one-time password reset codes.
type OTPRepository interface {
	Create(ctx context.Context, otp *domain.PasswordResetOTP) error
	// InvalidateForCustomer marks every outstanding code of the customer used.
	InvalidateForCustomer(ctx context.Context, customerID string) error
	// FindUsable returns the newest unused, unexpired code matching code.
	FindUsable(ctx context.Context, customerID, code string, now time.Time) (*domain.PasswordResetOTP, error)
	MarkUsed(ctx context.Context, id string) error
}

type otpRepository struct {
	pool *pgxpool.Pool
}

// NewOTPRepository constructs repository.
func NewOTPRepository(pool *pgxpool.Pool) OTPRepository {
	return &otpRepository{pool: pool}
}

func (r *otpRepository) Create(ctx context.Context, otp *domain.PasswordResetOTP) error {
	const query = `
        INSERT INTO password_reset_otps (customer_id, phone, code, expires_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		otp.CustomerID,
		otp.Phone,
		otp.Code,
		otp.ExpiresAt,
	).Scan(&otp.ID, &otp.CreatedAt)
}

func (r *otpRepository) InvalidateForCustomer(ctx context.Context, customerID string) error {
	const query = `
        UPDATE password_reset_otps SET used_at=NOW()
        WHERE customer_id=$1 AND used_at IS NULL`
	_, err := r.pool.Exec(ctx, query, customerID)
	return err
}

func (r *otpRepository) FindUsable(ctx context.Context, customerID, code string, now time.Time) (*domain.PasswordResetOTP, error) {
	const query = `
        SELECT id, customer_id, phone, code, expires_at, used_at, created_at
        FROM password_reset_otps
        WHERE customer_id=$1 AND code=$2 AND expires_at > $3 AND used_at IS NULL
        ORDER BY created_at DESC LIMIT 1`
	var otp domain.PasswordResetOTP
	if err := r.pool.QueryRow(ctx, query, customerID, code, now).Scan(
		&otp.ID,
		&otp.CustomerID,
		&otp.Phone,
		&otp.Code,
		&otp.ExpiresAt,
		&otp.UsedAt,
		&otp.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *otpRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `UPDATE password_reset_otps SET used_at=NOW() WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
