package domain

import "time"

// Role is the privilege level carried by a user.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

// User is the owning identity behind issued tokens.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	TenantID     string
	Role         Role
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
