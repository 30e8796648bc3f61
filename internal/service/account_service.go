package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-shop/internal/auth"
	"github.com/spec-kit/farm-shop/internal/config"
	"github.com/spec-kit/farm-shop/internal/domain"
	"github.com/spec-kit/farm-shop/internal/events"
	"github.com/spec-kit/farm-shop/internal/repository"
	apperrors "github.com/spec-kit/farm-shop/pkg/util/errorutil"
)

const (
	minPasswordLength     = 6
	customerIDAttempts    = 10
	customerIDDigits      = 5
	otpDigits             = 6
	msgInvalidCredentials = "Invalid username or password"
	msgPasswordsMismatch  = "Passwords do not match"
	msgPasswordTooShort   = "Password must be at least 6 characters long"
)

// AccountService coordinates registration, login and password reset.
type AccountService struct {
	customers  repository.CustomerRepository
	otps       repository.OTPRepository
	resets     repository.PasswordResetRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	tokenMgr   *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
	otpTTL     time.Duration

	now    func() time.Time
	digits func(n int) (string, error)
}

// AccountDependencies encapsulates repo requirements for the account service.
type AccountDependencies struct {
	CustomerRepo      repository.CustomerRepository
	OTPRepo           repository.OTPRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		customers:  deps.CustomerRepo,
		otps:       deps.OTPRepo,
		resets:     deps.PasswordResetRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   minutesOr(cfg.Auth.PasswordResetTTLMinutes, 30),
		otpTTL:     minutesOr(cfg.Auth.OTPTTLMinutes, 10),
		now:        time.Now,
		digits:     randomDigits,
	}
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Username        string
	Email           string
	Phone           string
	Address         string
	Password        string
	ConfirmPassword string
}

// Register creates a customer account with a fresh customer id.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.Customer, error) {
	required := []struct{ name, value string }{
		{"Username", in.Username},
		{"Email", in.Email},
		{"Phone", in.Phone},
		{"Address", in.Address},
		{"Password", in.Password},
		{"Confirm password", in.ConfirmPassword},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, apperrors.NewValidationError(f.name+" is required", nil)
		}
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperrors.NewValidationError(msgPasswordsMismatch, nil)
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError(msgPasswordTooShort, nil)
	}

	taken, err := s.customers.UsernameOrEmailTaken(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, apperrors.NewConflict("Username or email already exists", nil)
	}

	customerID, err := s.newCustomerID(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	customer := &domain.Customer{
		CustomerID:   customerID,
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		PasswordHash: hash,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Username or email already exists", nil)
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventCustomerRegistered,
		CustomerID: customer.ID,
		Payload: events.CustomerRegisteredPayload{
			CustomerID: customer.CustomerID,
			Username:   customer.Username,
			Email:      customer.Email,
		},
	})
	return customer, nil
}

func (s *AccountService) newCustomerID(ctx context.Context) (string, error) {
	for i := 0; i < customerIDAttempts; i++ {
		digits, err := s.digits(customerIDDigits)
		if err != nil {
			return "", fmt.Errorf("generate customer id: %w", err)
		}
		id := "CUS" + digits
		taken, err := s.customers.CustomerIDTaken(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check customer id: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", apperrors.NewInternalError(errors.New("customer id space exhausted"))
}

// Login authenticates a customer and issues an access token.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.Customer, string, time.Time, error) {
	if username == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("Username and password are required", nil)
	}
	customer, err := s.customers.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized(msgInvalidCredentials)
		}
		return nil, "", time.Time{}, fmt.Errorf("load customer: %w", err)
	}
	if err := auth.ComparePassword(customer.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(msgInvalidCredentials)
	}
	token, exp, err := s.tokenMgr.GenerateToken(customer)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return customer, token, exp, nil
}

// Logout currently no-ops for stateless JWT approach.
func (s *AccountService) Logout(_ context.Context, _ string) error {
	return nil
}

// RequestPasswordReset replaces any outstanding reset code of the account
// registered with phone and sends a new one.
func (s *AccountService) RequestPasswordReset(ctx context.Context, phone string) error {
	if phone == "" {
		return apperrors.NewValidationError("Phone number is required", nil)
	}
	customer, err := s.customers.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundMessage("Phone number not found")
		}
		return fmt.Errorf("load customer: %w", err)
	}

	if err := s.otps.InvalidateForCustomer(ctx, customer.ID); err != nil {
		return fmt.Errorf("invalidate codes: %w", err)
	}
	code, err := s.digits(otpDigits)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	otp := &domain.PasswordResetOTP{
		CustomerID: customer.ID,
		Phone:      phone,
		Code:       code,
		ExpiresAt:  s.now().Add(s.otpTTL),
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventPasswordResetRequested,
		CustomerID: customer.ID,
		Payload: events.PasswordResetRequestedPayload{
			Phone:     phone,
			Code:      code,
			ExpiresAt: otp.ExpiresAt,
		},
	})
	return nil
}

// VerifyResetCode redeems a reset code and returns a single-use token for
// ResetPassword.
func (s *AccountService) VerifyResetCode(ctx context.Context, phone, code string) (string, error) {
	if phone == "" || code == "" {
		return "", apperrors.NewValidationError("Phone number and OTP are required", nil)
	}
	customer, err := s.customers.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewNotFoundMessage("User not found")
		}
		return "", fmt.Errorf("load customer: %w", err)
	}

	otp, err := s.otps.FindUsable(ctx, customer.ID, code, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewValidationError("Invalid or expired OTP", nil)
		}
		return "", fmt.Errorf("load code: %w", err)
	}
	if err := s.otps.MarkUsed(ctx, otp.ID); err != nil {
		return "", fmt.Errorf("redeem code: %w", err)
	}

	token := &repository.PasswordResetToken{
		CustomerID: customer.ID,
		Token:      uuid.NewString(),
		ExpiresAt:  s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token.Token, nil
}

// ResetPassword sets a new password using a token from VerifyResetCode.
func (s *AccountService) ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error {
	if resetToken == "" || newPassword == "" || confirmPassword == "" {
		return apperrors.NewValidationError("All fields are required", nil)
	}
	if newPassword != confirmPassword {
		return apperrors.NewValidationError(msgPasswordsMismatch, nil)
	}
	if utf8.RuneCountInString(newPassword) < minPasswordLength {
		return apperrors.NewValidationError(msgPasswordTooShort, nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	token, err := s.resets.Consume(ctx, resetToken, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidationError("Your reset session is invalid or has expired", nil)
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	if err := s.customers.UpdatePassword(ctx, token.CustomerID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.publishEvent(ctx, events.Event{Type: events.EventPasswordReset, CustomerID: token.CustomerID})
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AccountService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.String("event_id", event.ID), zap.Error(err))
	}
}

func randomDigits(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

func minutesOr(minutes, fallback int) time.Duration {
	if minutes <= 0 {
		minutes = fallback
	}
	return time.Duration(minutes) * time.Minute
}
