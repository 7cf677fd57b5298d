package domain

import (
	"fmt"
	"strings"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateSubmission requires every profile field and the API key.
func ValidateSubmission(s UserSubmission) error {
	if blank(s.FirstName) || blank(s.LastName) || blank(s.Email) || blank(s.APIKey) {
		return fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	return nil
}

// ValidateUser checks a user row before it is written.
func ValidateUser(u *User) error {
	if blank(u.FirstName) || blank(u.LastName) || blank(u.Email) {
		return fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if u.KeyID <= 0 {
		return fmt.Errorf("%w: user must reference a credential", ErrValidation)
	}
	return nil
}

// ValidateAdminCredentials requires both email and password.
func ValidateAdminCredentials(email, password string) error {
	if blank(email) || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	return nil
}
