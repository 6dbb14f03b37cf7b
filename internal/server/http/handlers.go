package http

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/api"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/principal"
	"github.com/dmitrijs2005/gophauth/internal/server/result"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 16 << 10

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in api.LoginRequest
	if !h.decode(w, r, &in) {
		return
	}

	res := h.auth.Login(r.Context(), in.Email, in.Password)
	if res.IsSuccess() {
		http.SetCookie(w, &http.Cookie{
			Name:     common.AccessTokenCookieName,
			Value:    res.Value.AccessToken,
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
	writeResult(w, res)
}

func (h *Handlers) RefreshSession(w http.ResponseWriter, r *http.Request) {
	var in api.RefreshSessionRequest
	if !h.decode(w, r, &in) {
		return
	}

	writeResult(w, h.auth.RefreshSession(r.Context(), in.RefreshToken))
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeResult(w, h.auth.Logout(ctx, principal.FromContext(ctx), cookieSignal{w: w}))
}

// decode reads a JSON body into dst and validates it. On failure it writes
// a BadRequest result and returns false.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		err = api.Validate(dst)
	}
	if err != nil {
		h.logger.Debug(r.Context(), "bad request", "path", r.URL.Path, "reason", err)
		writeResult(w, result.Failure[models.Session](result.BadRequest))
		return false
	}
	return true
}

func writeResult[T any](w http.ResponseWriter, res result.Result[T]) {
	writeJSON(w, res.Status(), res)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
