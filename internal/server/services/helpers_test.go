package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

type testEnv struct {
	svc    *AuthService
	dir    *Directory
	codec  *auth.Codec
	store  *RefreshTokenStore
	tokens *refreshtokens.MemoryRepository
	rec    *fakeRecorder
}

func newCodec(t *testing.T) *auth.Codec {
	t.Helper()
	c, err := auth.NewCodec(auth.CodecConfig{
		AccessKey:       []byte("access-key"),
		RefreshKey:      []byte("refresh-key"),
		Issuer:          "gophauth",
		Audience:        "clients",
		AccessLifetime:  15 * time.Minute,
		RefreshLifetime: time.Hour,
	})
	require.NoError(t, err)
	return c
}

func newTestDirectory() *Directory {
	d := NewDirectory(users.NewMemoryRepository())
	d.cost = bcrypt.MinCost
	return d
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	codec := newCodec(t)
	dir := newTestDirectory()
	tokens := refreshtokens.NewMemoryRepository()
	store := NewRefreshTokenStore(tokens, codec)
	rec := &fakeRecorder{}
	svc := NewAuthService(dir, codec, store, NewSessionIssuer(codec, store), logging.Nop{}, WithMetrics(rec))
	return &testEnv{svc: svc, dir: dir, codec: codec, store: store, tokens: tokens, rec: rec}
}

func (e *testEnv) register(t *testing.T, email, password string, roles ...string) *models.User {
	t.Helper()
	u, err := e.dir.Register(context.Background(), email, "", password, roles)
	require.NoError(t, err)
	return u
}

// --- fakes ---

type fakeDirectory struct {
	user     *models.User
	findErr  error
	byIDErr  error
	roles    []string
	rolesErr error
	password string
}

func (f *fakeDirectory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.user, nil
}

func (f *fakeDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.user, nil
}

func (f *fakeDirectory) VerifyPassword(user *models.User, password string) bool {
	return password == f.password
}

func (f *fakeDirectory) GetRoles(ctx context.Context, userID string) ([]string, error) {
	return f.roles, f.rolesErr
}

type fakeStore struct {
	record    *models.RefreshToken
	getErr    error
	deleted   bool
	deleteErr error
	allErr    error
	allN      int64
	block     bool
}

func (f *fakeStore) GetByValue(ctx context.Context, value string) (*models.RefreshToken, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.record, nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	return f.deleted, f.deleteErr
}

func (f *fakeStore) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	if f.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return f.allN, f.allErr
}

type fakeMinter struct {
	session *models.Session
	err     error
	calls   int
}

func (f *fakeMinter) IssueSession(ctx context.Context, user *models.User, roles []string) (*models.Session, error) {
	f.calls++
	return f.session, f.err
}

type fakeSignal struct {
	calls int
	err   error
}

func (f *fakeSignal) EndSession(ctx context.Context) error {
	f.calls++
	return f.err
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []string
	revoked  map[string]int64
}

func (f *fakeRecorder) Operation(op, outcome string, elapsed time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, op+":"+outcome)
}

func (f *fakeRecorder) TokensRevoked(reason string, n int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked == nil {
		f.revoked = map[string]int64{}
	}
	f.revoked[reason] += n
}

type fakeValidator struct{ ok bool }

func (f fakeValidator) ValidateRefreshToken(string) bool { return f.ok }
func (f fakeValidator) CheckRefreshToken(string) error {
	if f.ok {
		return nil
	}
	return errors.New("invalid")
}
