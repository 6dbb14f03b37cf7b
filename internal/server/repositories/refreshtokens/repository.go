// Package refreshtokens declares the server-side repository contract for
// refresh token records and its memory, PostgreSQL and Redis backends.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository defines operations for persisting, looking up and revoking
// refresh token records.
type Repository interface {
	// Create stores a new record. A duplicate id or token value yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, token *models.RefreshToken) error

	// FindByToken returns the record whose value equals token exactly, or
	// common.ErrorNotFound.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes the record with the given id and reports whether this
	// call removed it. Concurrent callers racing on the same id see at most
	// one true.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteAllByUser removes every record of userID and returns how many
	// were removed.
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired purges records whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
