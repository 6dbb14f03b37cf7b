// Package principal carries the identity of the authenticated caller.
package principal

import "context"

// Principal exposes the identifier of the caller, if one was authenticated.
type Principal interface {
	CurrentUserID() (string, bool)
}

// User is a Principal for a caller authenticated by an access token.
type User struct {
	ID string
}

func (u User) CurrentUserID() (string, bool) {
	return u.ID, u.ID != ""
}

// Anonymous is a Principal without identity.
type Anonymous struct{}

func (Anonymous) CurrentUserID() (string, bool) { return "", false }

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the Principal stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey).(Principal); ok && p != nil {
		return p
	}
	return Anonymous{}
}
