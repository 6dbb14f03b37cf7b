package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// cookieSignal ends a browser session by expiring the Jwt cookie.
type cookieSignal struct {
	w http.ResponseWriter
}

func (s cookieSignal) EndSession(context.Context) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	s.w.Header().Set(common.SessionEndedHeaderName, "true")
	return nil
}
