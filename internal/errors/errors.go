package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth service. Handlers translate these into
// HTTP statuses; the credential errors are deliberately generic so
// responses never reveal which check failed.
var (
	// Signup errors
	ErrDuplicateUser = errors.New("user already exists")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidMFACode     = errors.New("invalid MFA code")

	// Token errors
	ErrInvalidToken = errors.New("invalid or expired token")

	// Lookup errors
	ErrUserNotFound = errors.New("user not found")
	ErrNotFound     = errors.New("not found")

	// QR rendering errors
	ErrQRGeneration = errors.New("QR code generation failed")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
