// Package http exposes the authentication service as a JSON API.
package http

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/principal"
	"github.com/dmitrijs2005/gophauth/internal/server/result"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Authenticator is the orchestrator surface the handlers need.
type Authenticator interface {
	Login(ctx context.Context, email, password string) result.Result[models.LoginResponse]
	RefreshSession(ctx context.Context, refreshToken string) result.Result[models.Session]
	Logout(ctx context.Context, caller principal.Principal, signal services.SessionSignal) result.Result[string]
}

// AccessTokenParser verifies access tokens.
type AccessTokenParser interface {
	ParseAccessToken(token string) (*auth.Claims, error)
}

type Handlers struct {
	auth   Authenticator
	tokens AccessTokenParser
	logger logging.Logger
}

// NewRouter wires the authentication routes. A nil metrics handler leaves
// /metrics unregistered.
func NewRouter(a Authenticator, tp AccessTokenParser, l logging.Logger, metrics http.Handler) http.Handler {
	h := &Handlers{auth: a, tokens: tp, logger: l}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		h.recoverPanics,
		h.logRequests,
	)

	r.Route("/api/authentication", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/refresh-token", h.RefreshSession)
		r.With(h.authenticate).Delete("/logout", h.Logout)
	})

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	return r
}
