package chat

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 6
	minPhoneDigits    = 10
	otpLength         = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError is input rejected before any backend call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func validateUsername(s string) *ValidationError {
	if strings.TrimSpace(s) == "" {
		return invalid("username", "Username cannot be empty. Please enter a username:")
	}
	return nil
}

func validatePassword(s string) *ValidationError {
	if utf8.RuneCountInString(s) < minPasswordLength {
		return invalid("password", "Password must be at least 6 characters long. Please enter a password:")
	}
	return nil
}

func validateEmail(s string) *ValidationError {
	if !emailPattern.MatchString(strings.TrimSpace(s)) {
		return invalid("email", "That doesn't look like a valid email address. Please enter your email:")
	}
	return nil
}

func validatePhone(s string) *ValidationError {
	if !isDigits(s) || len(s) < minPhoneDigits {
		return invalid("phone", "Phone number must contain only digits and be at least 10 digits long. Please enter your phone number:")
	}
	return nil
}

func validateAddress(s string) *ValidationError {
	if strings.TrimSpace(s) == "" {
		return invalid("address", "Address cannot be empty. Please enter your delivery address:")
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isOTP(s string) bool {
	return len(s) == otpLength && isDigits(s)
}
