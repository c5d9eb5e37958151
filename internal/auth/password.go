package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/studytracker/internal/models"
	"github.com/mmynk/studytracker/internal/storage"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	ErrUsernameTaken      = errors.New("username already exists")
	ErrNotApproved        = errors.New("account is pending admin approval")
	ErrInvalidRole        = errors.New("role must be 'user' or 'admin'")
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage       UserStorage
	adminUsername string
	cost          int
}

var _ Authenticator = (*PasswordAuthenticator)(nil)

// NewPasswordAuthenticator creates a new password-based authenticator.
// adminUsername is the one username that self-registers as an approved admin.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewPasswordAuthenticator(storage UserStorage, adminUsername string, cost int) *PasswordAuthenticator {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordAuthenticator{
		storage:       storage,
		adminUsername: adminUsername,
		cost:          cost,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, credential string) (*models.User, error) {
	role, approved := models.RoleUser, false
	if a.adminUsername != "" && username == a.adminUsername {
		role, approved = models.RoleAdmin, true
	}
	return a.create(ctx, username, credential, role, approved)
}

// Provision creates an approved account with the given role.
func (a *PasswordAuthenticator) Provision(ctx context.Context, username, credential, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	return a.create(ctx, username, credential, role, true)
}

func (a *PasswordAuthenticator) create(ctx context.Context, username, credential, role string, approved bool) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         role,
		Approved:     approved,
	}

	// The UNIQUE constraint decides, so two concurrent registrations cannot both win.
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the username and password, returning the user if valid.
// Approval is checked before the password.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Approved {
		return nil, ErrNotApproved
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// EnsureDefaultAdmin creates the default admin account when no user has that
// username yet. It reports whether an account was created.
func (a *PasswordAuthenticator) EnsureDefaultAdmin(ctx context.Context, password string) (bool, error) {
	if a.adminUsername == "" {
		return false, nil
	}

	_, err := a.storage.GetUserByUsername(ctx, a.adminUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("failed to look up default admin: %w", err)
	}

	if _, err := a.Provision(ctx, a.adminUsername, password, models.RoleAdmin); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create default admin: %w", err)
	}

	slog.Warn("Default admin account created, change its password", "username", a.adminUsername)
	return true, nil
}
