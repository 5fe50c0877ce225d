package auth

import "time"

// Role is the access level attached to a profile. It is assigned at signup
// and never changes afterwards; no update path exists.
type Role string

const (
	// RoleOwner has full read/write access to its own shop data.
	RoleOwner Role = "owner"
	// RoleClient has read-only, price-redacted catalog visibility.
	RoleClient Role = "client"
)

// Valid reports whether the role is one of the two known values.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleClient
}

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile carries the business identity tied to a user account. Exactly one
// profile exists per signed-up user; it is created in the signup transaction.
type Profile struct {
	UserID    int64
	Role      Role
	FullName  string
	ShopName  string
	CreatedAt time.Time
}

// SignupInput collects the fields required to provision an account.
type SignupInput struct {
	Email    string
	Password string
	FullName string
	ShopName string
	Role     Role
}
