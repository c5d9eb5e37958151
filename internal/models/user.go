package models

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered user account.
type User struct {
	// ID is the SQLite row id.
	ID int64 `json:"id"`

	// Username is unique across all accounts.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string `json:"-"`

	// Role is either RoleUser or RoleAdmin.
	Role string `json:"role"`

	// Approved reports whether an administrator has approved the account.
	// Unapproved accounts cannot log in.
	Approved bool `json:"approved"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// UserUpdate carries the optional fields of an admin user edit.
// Nil fields are left unchanged.
type UserUpdate struct {
	Username *string
	Role     *string
}
