package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password length limits. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// Role is the role recorded for a user account.
type Role string

// Possible role values
const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// DefaultRole is assigned to every newly registered user.
const DefaultRole = RoleManager

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User is an account holder. Every employee, task and config record belongs
// to exactly one user.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	Password       string    `json:"-"` // plaintext, only set while registering
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NormalizeEmail trims and lower-cases an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates a User with the default role. The password is kept in
// plaintext on the struct; the user store hashes it before insert.
func NewUser(email, name, password string, now time.Time) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Name:      strings.TrimSpace(name),
		Role:      DefaultRole,
		Password:  password,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "user ID cannot be empty")
	}

	if u.Email == "" {
		return NewValidationError("email", "email is required")
	}
	if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
		return NewValidationError("email", "invalid email format")
	}

	if u.Name == "" {
		return NewValidationError("name", "name is required")
	}

	if !u.Role.IsValid() {
		return NewValidationError("role", "invalid role")
	}

	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return NewValidationError("password", "password must be at least 6 characters long")
		}
		if len(u.Password) > MaxPasswordLength {
			return NewValidationError("password", "password must be at most 72 characters long")
		}
	} else if u.HashedPassword == "" {
		return NewValidationError("password", "password is required")
	}

	return nil
}
