package domain

import "time"

// Credentials are the username/password pair presented to authenticate.
// They are never persisted.
type Credentials struct {
	Username string
	Password string
	TenantID string
}

// Token represents an issued authentication token.
type Token struct {
	ID        string
	UserID    string
	TenantID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Enabled   bool
}

// Expired reports whether the token is past its expiry at now.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Identity is the caller resolved from a valid token.
type Identity struct {
	UserID   string
	Username string
	TenantID string
	Role     Role
	Admin    bool
	Token    *Token
}
