package auth

import (
	"context"

	"github.com/mmynk/splitpool/internal/models"
)

// Authenticator creates member accounts and checks their credentials.
// PasswordAuthenticator is the only implementation.
type Authenticator interface {
	// Register creates a member. The email is normalized before it is stored.
	Register(ctx context.Context, email, firstName, lastName, credential string) (*models.Member, error)

	// Authenticate returns the member owning email if credential matches,
	// ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, email, credential string) (*models.Member, error)

	// ValidateCredential reports whether credential is acceptable for a new account.
	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
