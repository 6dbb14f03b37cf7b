package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/google/uuid"
)

// RefreshTokenIssuer signs refresh tokens for a record id.
type RefreshTokenIssuer interface {
	IssueRefreshToken(id string) (string, time.Time, error)
}

// RefreshTokenStore is the server-side bookkeeping of refresh tokens. A token
// is usable only while its record is present here.
type RefreshTokenStore struct {
	repo   refreshtokens.Repository
	issuer RefreshTokenIssuer
	now    func() time.Time
}

func NewRefreshTokenStore(repo refreshtokens.Repository, issuer RefreshTokenIssuer) *RefreshTokenStore {
	return &RefreshTokenStore{repo: repo, issuer: issuer, now: time.Now}
}

// Create mints and persists a new refresh token for userID.
func (s *RefreshTokenStore) Create(ctx context.Context, userID string) (*models.RefreshToken, error) {
	id := uuid.NewString()
	token, expires, err := s.issuer.IssueRefreshToken(id)
	if err != nil {
		return nil, fmt.Errorf("error issuing refresh token: %w", err)
	}

	rt := &models.RefreshToken{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expires.UTC(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return rt, nil
}

// GetByValue finds the record holding exactly value.
func (s *RefreshTokenStore) GetByValue(ctx context.Context, value string) (*models.RefreshToken, error) {
	if value == "" {
		return nil, common.ErrorNotFound
	}
	return s.repo.FindByToken(ctx, value)
}

// DeleteByID removes a record and reports whether this call removed it.
func (s *RefreshTokenStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *RefreshTokenStore) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteAllByUser(ctx, userID)
}

func (s *RefreshTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().UTC())
}
