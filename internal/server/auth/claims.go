// Package auth mints and verifies the signed tokens of a session.
package auth

import "github.com/dmitrijs2005/gophauth/internal/server/models"

// Claims is the identity snapshot embedded into an access token.
type Claims struct {
	Subject  string
	UserName string
	Email    string
	Roles    []string
}

// BuildClaims derives the claim set for user. Roles keep their order and the
// slice is copied so later changes by the caller do not leak into tokens.
func BuildClaims(user models.User, roles []string) Claims {
	c := Claims{
		Subject:  user.ID,
		UserName: user.UserName,
		Email:    user.Email,
		Roles:    make([]string, 0, len(roles)),
	}
	c.Roles = append(c.Roles, roles...)
	return c
}
