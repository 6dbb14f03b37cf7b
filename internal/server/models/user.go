// Package models defines server-side data models shared by repositories,
// services and transports.
package models

import "time"

// User is an identity record owned by the user directory.
// PasswordHash is a bcrypt hash and never leaves the directory.
type User struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash []byte
	CreatedAt    time.Time
}
