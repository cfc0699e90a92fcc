// Package auth verifies the admin password that gates occupancy simulation
// and resets on remote surfaces.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrAdminDisabled is returned when no admin password hash is configured.
var ErrAdminDisabled = errors.New("admin operations are disabled")

// ErrInvalidCredentials is returned when the supplied password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword creates a bcrypt hash of the given password.
//
// Precondition: password must be non-empty.
// Postcondition: Returns a bcrypt hash string.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verifier checks admin passwords against a configured bcrypt hash.
type Verifier struct {
	hash []byte
}

// NewVerifier creates a Verifier for hash. An empty hash disables admin access.
func NewVerifier(hash string) *Verifier {
	return &Verifier{hash: []byte(hash)}
}

// Enabled reports whether an admin password is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.hash) > 0
}

// Verify checks password against the configured hash.
//
// Postcondition: Returns nil on match, ErrAdminDisabled when no hash is
// configured, or ErrInvalidCredentials otherwise.
func (v *Verifier) Verify(password string) error {
	if !v.Enabled() {
		return ErrAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

type passwordKey struct{}

// ContextWithPassword returns a copy of ctx carrying an admin password for
// remote clients to forward.
func ContextWithPassword(ctx context.Context, password string) context.Context {
	return context.WithValue(ctx, passwordKey{}, password)
}

// PasswordFromContext returns the admin password stored by ContextWithPassword.
func PasswordFromContext(ctx context.Context) (string, bool) {
	pw, ok := ctx.Value(passwordKey{}).(string)
	return pw, ok && pw != ""
}
