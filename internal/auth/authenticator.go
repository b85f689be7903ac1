// Package auth handles user credentials and session tokens.
package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator creates ledger users and checks their credentials.
// PasswordAuthenticator is the only implementation.
type Authenticator interface {
	// Register creates a user. Email is normalized to lower case and an empty
	// name defaults to the email's local part.
	Register(ctx context.Context, email, name, credential string) (*models.User, error)

	// Authenticate returns the user owning email if credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	ValidateCredential(credential string) error
}
