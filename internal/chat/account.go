package chat

import (
	"context"
	"errors"
	"strings"
)

// AccountService is the account backend the assistant drives. A refusal by
// the backend is reported as a *RejectionError; any other error is treated
// as a transport failure.
type AccountService interface {
	Login(ctx context.Context, username, password string) (*SessionUser, error)
	Register(ctx context.Context, reg Registration) (customerID string, err error)
	RequestPasswordReset(ctx context.Context, phone string) error
	VerifyResetCode(ctx context.Context, phone, code string) (resetToken string, err error)
	ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error
	Logout(ctx context.Context) error
}

// SessionStore keeps the logged-in customer of a conversation across restarts.
// LoadUser returns nil, nil when nobody is logged in.
type SessionStore interface {
	LoadUser(ctx context.Context) (*SessionUser, error)
	SaveUser(ctx context.Context, user SessionUser) error
	ClearUser(ctx context.Context) error
}

// RejectionError is a failure reported by the backend itself.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return "request rejected"
	}
	return e.Message
}

// Reject builds a RejectionError.
func Reject(message string) error {
	return &RejectionError{Message: message}
}

// IsRejection reports whether err is a refusal by the backend rather than a
// transport failure.
func IsRejection(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej)
}

// failureMessage picks the text shown for a failed backend call: the
// backend's own message when it gave one, fallback for a bare rejection,
// and a generic retry hint for transport failures.
func failureMessage(err error, fallback string) string {
	var rej *RejectionError
	if !errors.As(err, &rej) {
		return msgTransportFailure
	}
	if msg := strings.TrimSpace(rej.Message); msg != "" {
		return sentence(msg)
	}
	return fallback
}

func sentence(s string) string {
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}
