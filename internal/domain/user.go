package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash is an opaque bcrypt string and
// must never leave the service layer.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
}

// CurrentUser is the identity resolved from a verified bearer token.
// It is the only source of identity for ownership checks.
type CurrentUser struct {
	UserID   uuid.UUID
	Email    string
	FullName string
}

// FirstName returns the first whitespace-separated word of FullName,
// or "" when FullName is blank.
func (u CurrentUser) FirstName() string {
	parts := strings.Fields(u.FullName)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address
// so that lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
