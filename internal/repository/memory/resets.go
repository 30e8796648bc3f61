package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/farm-shop/internal/domain"
	"github.com/spec-kit/farm-shop/internal/repository"
)

// OTPRepository is an in-memory repository.OTPRepository.
type OTPRepository struct {
	mu   sync.Mutex
	otps []domain.PasswordResetOTP
}

// NewOTPRepository returns an empty repository.
func NewOTPRepository() *OTPRepository {
	return &OTPRepository{}
}

var _ repository.OTPRepository = (*OTPRepository)(nil)

func (r *OTPRepository) Create(_ context.Context, otp *domain.PasswordResetOTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	otp.ID = uuid.NewString()
	otp.CreatedAt = time.Now()
	r.otps = append(r.otps, *otp)
	return nil
}

func (r *OTPRepository) InvalidateForCustomer(_ context.Context, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for i := range r.otps {
		if r.otps[i].CustomerID == customerID && r.otps[i].UsedAt == nil {
			r.otps[i].UsedAt = &now
		}
	}
	return nil
}

func (r *OTPRepository) FindUsable(_ context.Context, customerID, code string, now time.Time) (*domain.PasswordResetOTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.otps) - 1; i >= 0; i-- {
		otp := r.otps[i]
		if otp.CustomerID == customerID && otp.Code == code && otp.Usable(now) {
			return &otp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *OTPRepository) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for i := range r.otps {
		if r.otps[i].ID == id {
			r.otps[i].UsedAt = &now
		}
	}
	return nil
}

// PasswordResetRepository is an in-memory repository.PasswordResetRepository.
type PasswordResetRepository struct {
	mu     sync.Mutex
	tokens map[string]repository.PasswordResetToken
}

// NewPasswordResetRepository returns an empty repository.
func NewPasswordResetRepository() *PasswordResetRepository {
	return &PasswordResetRepository{tokens: make(map[string]repository.PasswordResetToken)}
}

var _ repository.PasswordResetRepository = (*PasswordResetRepository)(nil)

func (r *PasswordResetRepository) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[token.Token]; exists {
		return repository.ErrDuplicate
	}
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = *token
	return nil
}

func (r *PasswordResetRepository) Consume(_ context.Context, tokenStr string, now time.Time) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenStr]
	if !ok || token.UsedAt != nil || !now.Before(token.ExpiresAt) {
		return nil, repository.ErrNotFound
	}
	used := now
	token.UsedAt = &used
	r.tokens[tokenStr] = token
	return &token, nil
}
