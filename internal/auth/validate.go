package auth

import (
	"regexp"
	"strings"

	"github.com/tekmiz/tekmiz-go/internal/model"
)

const (
	minDisplayNameLen = 2
	minPasswordLen    = 6
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validation happens before any network call: a violation returns a
// model.ErrValidation immediately with no backend traffic.

func validateDisplayName(name string) error {
	if len(strings.TrimSpace(name)) < minDisplayNameLen {
		return model.ValidationError("display name must be at least 2 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return model.ValidationError("invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return model.ValidationError("password must be at least 6 characters")
	}
	return nil
}
