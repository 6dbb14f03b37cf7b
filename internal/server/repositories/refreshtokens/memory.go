package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryRepository keeps records in process memory. It is used when no
// database is configured and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.RefreshToken
	byToken map[string]string
	byUser  map[string]map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]models.RefreshToken),
		byToken: make(map[string]string),
		byUser:  make(map[string]map[string]struct{}),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[t.ID]; ok {
		return common.ErrorAlreadyExists
	}
	if _, ok := r.byToken[t.Token]; ok {
		return common.ErrorAlreadyExists
	}

	r.byID[t.ID] = *t
	r.byToken[t.Token] = t.ID
	ids, ok := r.byUser[t.UserID]
	if !ok {
		ids = make(map[string]struct{})
		r.byUser[t.UserID] = ids
	}
	ids[t.ID] = struct{}{}
	return nil
}

func (r *MemoryRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t := r.byID[id]
	return &t, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.remove(id), nil
}

func (r *MemoryRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id := range r.byUser[userID] {
		if r.remove(id) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.byID {
		if t.Expired(now) && r.remove(id) {
			n++
		}
	}
	return n, nil
}

// remove must be called with mu held.
func (r *MemoryRepository) remove(id string) bool {
	t, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	delete(r.byToken, t.Token)
	if ids := r.byUser[t.UserID]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byUser, t.UserID)
		}
	}
	return true
}
