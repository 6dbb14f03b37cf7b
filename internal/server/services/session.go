package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// AccessTokenIssuer signs access tokens.
type AccessTokenIssuer interface {
	IssueAccessToken(claims auth.Claims) (string, error)
}

// RefreshCreator persists a fresh refresh record for a user.
type RefreshCreator interface {
	Create(ctx context.Context, userID string) (*models.RefreshToken, error)
}

// SessionIssuer mints a token pair for an already authenticated user.
type SessionIssuer struct {
	access  AccessTokenIssuer
	refresh RefreshCreator
}

func NewSessionIssuer(access AccessTokenIssuer, refresh RefreshCreator) *SessionIssuer {
	return &SessionIssuer{access: access, refresh: refresh}
}

// IssueSession creates an access token carrying user's claims and one new
// refresh record. Existing records of the user are left alone.
func (i *SessionIssuer) IssueSession(ctx context.Context, user *models.User, roles []string) (*models.Session, error) {
	access, err := i.access.IssueAccessToken(auth.BuildClaims(*user, roles))
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}

	rt, err := i.refresh.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.Session{AccessToken: access, RefreshToken: rt.Token}, nil
}
