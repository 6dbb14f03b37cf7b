package services

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/principal"
	"github.com/dmitrijs2005/gophauth/internal/server/result"
	"github.com/google/uuid"
)

// LoggedOutMessage is the value of a successful Logout.
const LoggedOutMessage = "You are logged out"

const (
	opLogin   = "login"
	opRefresh = "refresh"
	opLogout  = "logout"
)

// RefreshValidator checks refresh tokens cryptographically.
type RefreshValidator interface {
	ValidateRefreshToken(token string) bool
	CheckRefreshToken(token string) error
}

// RefreshStore is the part of the refresh token store the orchestrator uses.
type RefreshStore interface {
	GetByValue(ctx context.Context, value string) (*models.RefreshToken, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)
}

// SessionMinter issues a token pair for an authenticated user.
type SessionMinter interface {
	IssueSession(ctx context.Context, user *models.User, roles []string) (*models.Session, error)
}

// SessionSignal ends the caller's session on the transport side, e.g. by
// clearing a cookie.
type SessionSignal interface {
	EndSession(ctx context.Context) error
}

// AuthService orchestrates login, refresh token rotation and logout. Every
// operation reports its outcome as a result.Result.
type AuthService struct {
	users    UserDirectory
	tokens   RefreshValidator
	store    RefreshStore
	sessions SessionMinter
	logger   logging.Logger
	metrics  metrics.Recorder
	timeout  time.Duration
}

type AuthOption func(*AuthService)

// WithMetrics sets the recorder for operation outcomes.
func WithMetrics(r metrics.Recorder) AuthOption {
	return func(s *AuthService) { s.metrics = r }
}

// WithRequestTimeout bounds operations whose context carries no deadline.
func WithRequestTimeout(d time.Duration) AuthOption {
	return func(s *AuthService) { s.timeout = d }
}

func NewAuthService(users UserDirectory, tokens RefreshValidator, store RefreshStore, sessions SessionMinter, l logging.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    users,
		tokens:   tokens,
		store:    store,
		sessions: sessions,
		logger:   l.With("module", "auth_service"),
		metrics:  metrics.Nop{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Login authenticates email and password and issues a new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (res result.Result[models.LoginResponse]) {
	ctx, done := s.begin(ctx, opLogin)
	defer func() { done(res.Errors) }()
	defer contain(ctx, s.logger, opLogin, &res)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return result.Failure[models.LoginResponse](result.UserNotFound)
		}
		return result.Failure[models.LoginResponse](s.internal(ctx, "find user by email", err))
	}
	if user == nil {
		return result.Failure[models.LoginResponse](s.internal(ctx, "find user by email", errNoResult))
	}

	if !s.users.VerifyPassword(user, password) {
		s.logger.Info(ctx, "password mismatch", "user_id", user.ID)
		return result.Failure[models.LoginResponse](result.PasswordDoesNotMatch)
	}

	session, rerr := s.issue(ctx, user)
	if rerr != nil {
		return result.Failure[models.LoginResponse](*rerr)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return result.Success(models.NewLoginResponse(user, session))
}

// RefreshSession redeems refreshToken for a new session. The presented token
// is revoked; under concurrent redemption only one caller succeeds.
func (s *AuthService) RefreshSession(ctx context.Context, refreshToken string) (res result.Result[models.Session]) {
	ctx, done := s.begin(ctx, opRefresh)
	defer func() { done(res.Errors) }()
	defer contain(ctx, s.logger, opRefresh, &res)

	if !s.tokens.ValidateRefreshToken(refreshToken) {
		s.logger.Debug(ctx, "refresh token rejected", "reason", s.tokens.CheckRefreshToken(refreshToken))
		return result.Failure[models.Session](result.InvalidRefreshToken)
	}

	record, err := s.store.GetByValue(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "refresh token not in store")
			return result.Failure[models.Session](result.RefreshTokenNotFound)
		}
		return result.Failure[models.Session](s.internal(ctx, "find refresh token", err))
	}
	if record == nil {
		return result.Failure[models.Session](s.internal(ctx, "find refresh token", errNoResult))
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return result.Failure[models.Session](result.UserNotFound)
		}
		return result.Failure[models.Session](s.internal(ctx, "find user by id", err))
	}
	if user == nil {
		return result.Failure[models.Session](s.internal(ctx, "find user by id", errNoResult))
	}

	deleted, err := s.store.DeleteByID(ctx, record.ID)
	if err != nil {
		return result.Failure[models.Session](s.internal(ctx, "revoke refresh token", err))
	}
	if !deleted {
		s.logger.Warn(ctx, "refresh token already redeemed", "user_id", user.ID, "token_id", record.ID)
		return result.Failure[models.Session](result.RefreshTokenNotFound)
	}
	s.metrics.TokensRevoked("rotation", 1)

	session, rerr := s.issue(ctx, user)
	if rerr != nil {
		return result.Failure[models.Session](*rerr)
	}

	s.logger.Info(ctx, "session refreshed", "user_id", user.ID)
	return result.Success(*session)
}

// Logout revokes every refresh token of the caller and ends the transport
// session through signal. A nil signal is skipped.
func (s *AuthService) Logout(ctx context.Context, caller principal.Principal, signal SessionSignal) (res result.Result[string]) {
	ctx, done := s.begin(ctx, opLogout)
	defer func() { done(res.Errors) }()
	defer contain(ctx, s.logger, opLogout, &res)

	if caller == nil {
		return result.Failure[string](result.UnauthorizedAccess)
	}
	userID, ok := caller.CurrentUserID()
	if !ok {
		return result.Failure[string](result.UnauthorizedAccess)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return result.Failure[string](result.UnauthorizedAccess)
	}

	n, err := s.store.DeleteAllByUser(ctx, userID)
	if err != nil {
		return result.Failure[string](s.internal(ctx, "revoke user tokens", err))
	}
	s.metrics.TokensRevoked("logout", n)

	if signal != nil {
		if err := signal.EndSession(ctx); err != nil {
			return result.Failure[string](s.internal(ctx, "end session", err))
		}
	}

	s.logger.Info(ctx, "user logged out", "user_id", userID, "revoked", n)
	return result.Success(LoggedOutMessage)
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*models.Session, *result.Error) {
	roles, err := s.users.GetRoles(ctx, user.ID)
	if err != nil {
		e := s.internal(ctx, "get roles", err)
		return nil, &e
	}
	session, err := s.sessions.IssueSession(ctx, user, roles)
	if err != nil {
		e := s.internal(ctx, "issue session", err)
		return nil, &e
	}
	if session == nil {
		e := s.internal(ctx, "issue session", errNoResult)
		return nil, &e
	}
	return session, nil
}

// errNoResult marks a collaborator that returned neither a value nor an error.
var errNoResult = errors.New("collaborator returned no result")

// internal maps a collaborator failure to Timeout or ServerError and logs it.
// A cancelled caller is not a timeout.
func (s *AuthService) internal(ctx context.Context, step string, err error) result.Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn(ctx, "operation timed out", "step", step, "error", err)
		return result.Timeout
	case errors.Is(err, context.Canceled):
		s.logger.Debug(ctx, "operation canceled", "step", step, "error", err)
		return result.ServerError
	}
	s.logger.Error(ctx, "operation failed", "step", step, "error", err)
	return result.ServerError
}

// contain turns a panic raised by a collaborator into ServerError. It must be
// deferred after the outcome recorder so the recorder sees the failure.
func contain[T any](ctx context.Context, l logging.Logger, op string, res *result.Result[T]) {
	if r := recover(); r != nil {
		l.Error(ctx, "panic in auth operation", "op", op, "panic", r, "stack", string(debug.Stack()))
		*res = result.Failure[T](result.ServerError)
	}
}

// begin applies the request timeout and returns a func recording the outcome.
func (s *AuthService) begin(ctx context.Context, op string) (context.Context, func([]result.Error)) {
	start := time.Now()
	cancel := context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok && s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}

	return ctx, func(errs []result.Error) {
		cancel()
		outcome := "ok"
		if len(errs) > 0 {
			outcome = errs[0].Code
		}
		s.metrics.Operation(op, outcome, time.Since(start))
	}
}
