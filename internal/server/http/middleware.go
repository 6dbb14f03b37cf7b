package http

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/principal"
	"github.com/dmitrijs2005/gophauth/internal/server/result"
	"github.com/go-chi/chi/v5/middleware"
)

// authenticate resolves the caller from "Authorization: Bearer" or the Jwt
// cookie. Requests without a token continue anonymously; a token that does
// not verify is answered with UnauthorizedAccess.
func (h *Handlers) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := h.tokens.ParseAccessToken(token)
		if err != nil {
			h.logger.Debug(r.Context(), "access token rejected", "path", r.URL.Path, "reason", err)
			writeResult(w, result.Failure[models.Session](result.UnauthorizedAccess))
			return
		}

		ctx := principal.WithPrincipal(r.Context(), principal.User{ID: claims.Subject})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

func (h *Handlers) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error(r.Context(), "panic in handler", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				writeResult(w, result.Failure[models.Session](result.ServerError))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
