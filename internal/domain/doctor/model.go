// Package doctor handles account signup, login and the doctor profile.
package doctor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no account exists for an email.
	ErrNotFound = errors.New("doctor not found")

	// ErrEmailTaken is returned when signing up with an existing email.
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidCredentials is returned on a failed login. It deliberately
	// does not distinguish a wrong password from an unknown email.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Doctor is the account profile stored at doctors/{email}.
type Doctor struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	UID          string `json:"uid"`
	PasswordHash string `json:"password_hash"`
	AlertEmail   string `json:"alert_email,omitempty"`
}

// SignupRequest carries the fields for a new account.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return fmt.Errorf("a valid email address is required")
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}
