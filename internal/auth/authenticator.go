package auth

import (
	"context"

	"github.com/mmynk/studytracker/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping the credential scheme without changing the service layer code.
type Authenticator interface {
	// Register creates a self-service account. Only the configured default admin
	// username is created approved with the admin role; everyone else waits for approval.
	Register(ctx context.Context, username, credential string) (*models.User, error)

	// Provision creates an already approved account with the given role.
	// Used by administrators and at startup.
	Provision(ctx context.Context, username, credential, role string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Returns ErrNotApproved for accounts still waiting for approval.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
