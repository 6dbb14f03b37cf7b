package models

import "time"

// RefreshToken is a persisted refresh record. ID is also the jti embedded in
// Token. Records are never mutated, only created and deleted.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is past its expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
