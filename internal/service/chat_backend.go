package service

import (
	"context"
	"errors"

	"github.com/spec-kit/farm-shop/internal/chat"
	apperrors "github.com/spec-kit/farm-shop/pkg/util/errorutil"
)

// ChatBackend drives AccountService on behalf of the chat assistant.
// Client faults become chat rejections; anything else stays a transport
// failure.
type ChatBackend struct {
	accounts *AccountService
}

// NewChatBackend wraps accounts.
func NewChatBackend(accounts *AccountService) *ChatBackend {
	return &ChatBackend{accounts: accounts}
}

var _ chat.AccountService = (*ChatBackend)(nil)

func (b *ChatBackend) Login(ctx context.Context, username, password string) (*chat.SessionUser, error) {
	customer, _, _, err := b.accounts.Login(ctx, username, password)
	if err != nil {
		return nil, asRejection(err)
	}
	return &chat.SessionUser{
		ID:         customer.ID,
		CustomerID: customer.CustomerID,
		Username:   customer.Username,
		Email:      customer.Email,
		Phone:      customer.Phone,
		Address:    customer.Address,
	}, nil
}

func (b *ChatBackend) Register(ctx context.Context, reg chat.Registration) (string, error) {
	customer, err := b.accounts.Register(ctx, RegisterInput{
		Username:        reg.Username,
		Email:           reg.Email,
		Phone:           reg.Phone,
		Address:         reg.Address,
		Password:        reg.Password,
		ConfirmPassword: reg.ConfirmPassword,
	})
	if err != nil {
		return "", asRejection(err)
	}
	return customer.CustomerID, nil
}

func (b *ChatBackend) RequestPasswordReset(ctx context.Context, phone string) error {
	return asRejection(b.accounts.RequestPasswordReset(ctx, phone))
}

func (b *ChatBackend) VerifyResetCode(ctx context.Context, phone, code string) (string, error) {
	token, err := b.accounts.VerifyResetCode(ctx, phone, code)
	return token, asRejection(err)
}

func (b *ChatBackend) ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error {
	return asRejection(b.accounts.ResetPassword(ctx, resetToken, newPassword, confirmPassword))
}

func (b *ChatBackend) Logout(ctx context.Context) error {
	return asRejection(b.accounts.Logout(ctx, ""))
}

func asRejection(err error) error {
	if err == nil {
		return nil
	}
	var de *apperrors.DomainError
	if errors.As(err, &de) && de.ClientFault() {
		return chat.Reject(de.Message)
	}
	return err
}
