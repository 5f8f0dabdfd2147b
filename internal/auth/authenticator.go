package auth

import (
	"context"

	"github.com/xoulomon/stellarsave/internal/models"
)

// Authenticator proves that a caller controls a principal address.
// Implementations can be swapped (passwords, signatures, OAuth) without
// changing the service layer.
type Authenticator interface {
	// Register creates a principal for address protected by credential.
	Register(ctx context.Context, address, credential string) (*models.Principal, error)

	// Authenticate verifies credential and returns the principal.
	Authenticate(ctx context.Context, address, credential string) (*models.Principal, error)

	// ValidateCredential checks the credential meets the implementation's rules.
	ValidateCredential(credential string) error
}
