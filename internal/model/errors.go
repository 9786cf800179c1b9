package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Client-side, pre-network failures
	ErrValidation       = errors.New("validation failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAlreadyTeacher   = errors.New("already a teacher")

	// Backend-reported failures
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrResourceNotFound = errors.New("resource not found")
	ErrIdentityNotFound = errors.New("identity not found")

	// Transport-level failure; no sub-code beyond "try again"
	ErrNetwork = errors.New("network error")
)

// AuthCode classifies a backend auth rejection
type AuthCode string

const (
	AuthCodeInvalidCredentials AuthCode = "invalid_credentials"
	AuthCodeEmailExists        AuthCode = "email_exists"
	AuthCodeAccountNotFound    AuthCode = "account_not_found"
	AuthCodeRateLimited        AuthCode = "rate_limited"
)

// AuthError is a backend-rejected auth operation carrying a
// machine-classifiable code
type AuthError struct {
	Code    AuthCode
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth error: %s", e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAuthError creates an AuthError with the given code
func NewAuthError(code AuthCode, message string) *AuthError {
	return &AuthError{Code: code, Message: message}
}

// AuthCodeOf extracts the auth code from an error chain, or "" if the
// error is not an AuthError
func AuthCodeOf(err error) AuthCode {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// ValidationError wraps ErrValidation with a field-level reason, so
// callers can both classify it (errors.Is) and show the reason
func ValidationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
