package refreshtokens

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract exercises behaviour every backend must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond).UTC()

	mk := func(userID string) *models.RefreshToken {
		id := uuid.NewString()
		return &models.RefreshToken{ID: id, UserID: userID, Token: "tok-" + id, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	}

	t.Run("create and find", func(t *testing.T) {
		repo := newRepo(t)
		rt := mk("u1")
		require.NoError(t, repo.Create(ctx, rt))

		got, err := repo.FindByToken(ctx, rt.Token)
		require.NoError(t, err)
		assert.Equal(t, rt.ID, got.ID)
		assert.Equal(t, rt.UserID, got.UserID)
		assert.Equal(t, rt.Token, got.Token)
		assert.True(t, rt.ExpiresAt.Equal(got.ExpiresAt))
	})

	t.Run("exact match only", func(t *testing.T) {
		repo := newRepo(t)
		rt := mk("u1")
		require.NoError(t, repo.Create(ctx, rt))

		_, err := repo.FindByToken(ctx, rt.Token+"x")
		assert.ErrorIs(t, err, common.ErrorNotFound)
		_, err = repo.FindByToken(ctx, "")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("duplicate value rejected", func(t *testing.T) {
		repo := newRepo(t)
		rt := mk("u1")
		require.NoError(t, repo.Create(ctx, rt))

		dup := mk("u2")
		dup.Token = rt.Token
		assert.ErrorIs(t, repo.Create(ctx, dup), common.ErrorAlreadyExists)
	})

	t.Run("delete once", func(t *testing.T) {
		repo := newRepo(t)
		rt := mk("u1")
		require.NoError(t, repo.Create(ctx, rt))

		deleted, err := repo.Delete(ctx, rt.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, rt.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = repo.FindByToken(ctx, rt.Token)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("delete unknown id", func(t *testing.T) {
		deleted, err := newRepo(t).Delete(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("delete all by user", func(t *testing.T) {
		repo := newRepo(t)
		a, b, other := mk("u1"), mk("u1"), mk("u2")
		for _, rt := range []*models.RefreshToken{a, b, other} {
			require.NoError(t, repo.Create(ctx, rt))
		}

		n, err := repo.DeleteAllByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		for _, rt := range []*models.RefreshToken{a, b} {
			_, err := repo.FindByToken(ctx, rt.Token)
			assert.ErrorIs(t, err, common.ErrorNotFound)
		}
		_, err = repo.FindByToken(ctx, other.Token)
		assert.NoError(t, err, "other users keep their tokens")

		n, err = repo.DeleteAllByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Zero(t, n, "second call is a no-op")
	})

	t.Run("concurrent delete has one winner", func(t *testing.T) {
		repo := newRepo(t)
		rt := mk("u1")
		require.NoError(t, repo.Create(ctx, rt))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				deleted, err := repo.Delete(ctx, rt.ID)
				assert.NoError(t, err)
				if deleted {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}
