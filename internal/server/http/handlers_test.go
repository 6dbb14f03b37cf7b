package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	IsSuccess bool `json:"isSuccess"`
	Errors    []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
	Value json.RawMessage `json:"value"`
}

type testEnv struct {
	codec   *auth.Codec
	dir     *services.Directory
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	codec, err := auth.NewCodec(auth.CodecConfig{
		AccessKey:       []byte("access-key"),
		RefreshKey:      []byte("refresh-key"),
		Issuer:          "gophauth",
		Audience:        "clients",
		AccessLifetime:  15 * time.Minute,
		RefreshLifetime: time.Hour,
	})
	require.NoError(t, err)

	dir := services.NewDirectory(users.NewMemoryRepository())
	store := services.NewRefreshTokenStore(refreshtokens.NewMemoryRepository(), codec)
	svc := services.NewAuthService(dir, codec, store, services.NewSessionIssuer(codec, store), logging.Nop{})

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})

	return &testEnv{codec: codec, dir: dir, handler: NewRouter(svc, codec, logging.Nop{}, metrics)}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_SetsCookie(t *testing.T) {
	e := newTestEnv(t)
	user, err := e.dir.Register(context.Background(), "alice@example.com", "alice", "s3cret", nil)
	require.NoError(t, err)

	rec, env := e.do(t, jsonRequest(http.MethodPost, "/api/authentication/login", `{"email":"alice@example.com","password":"s3cret"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.IsSuccess)
	assert.Empty(t, env.Errors)

	var value struct {
		ID          string `json:"id"`
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Value, &value))
	assert.Equal(t, user.ID, value.ID)

	c := findCookie(rec, common.AccessTokenCookieName)
	require.NotNil(t, c)
	assert.Equal(t, value.AccessToken, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestLogin_Failures(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.dir.Register(context.Background(), "bob@example.com", "bob", "pw", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"email":`, http.StatusBadRequest, "BadRequest"},
		{"unknown field", `{"email":"bob@example.com","password":"pw","extra":1}`, http.StatusBadRequest, "BadRequest"},
		{"invalid email", `{"email":"bob","password":"pw"}`, http.StatusBadRequest, "BadRequest"},
		{"unknown user", `{"email":"carol@example.com","password":"pw"}`, http.StatusNotFound, "UserNotFound"},
		{"wrong password", `{"email":"bob@example.com","password":"nope"}`, http.StatusUnauthorized, "PasswordDoesNotMatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := e.do(t, jsonRequest(http.MethodPost, "/api/authentication/login", tt.body))
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, env.IsSuccess)
			require.Len(t, env.Errors, 1)
			assert.Equal(t, tt.code, env.Errors[0].Code)
			assert.Equal(t, "null", string(env.Value))
			assert.Nil(t, findCookie(rec, common.AccessTokenCookieName))
		})
	}
}

func TestRefreshAndLogout(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.dir.Register(context.Background(), "alice@example.com", "alice", "s3cret", nil)
	require.NoError(t, err)

	_, env := e.do(t, jsonRequest(http.MethodPost, "/api/authentication/login", `{"email":"alice@example.com","password":"s3cret"}`))
	var login struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Value, &login))

	body := `{"refreshToken":"` + login.RefreshToken + `"}`
	rec, env := e.do(t, jsonRequest(http.MethodPost, "/api/authentication/refresh-token", body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Value, &session))
	assert.NotEmpty(t, session.AccessToken)

	rec, env = e.do(t, jsonRequest(http.MethodPost, "/api/authentication/refresh-token", body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "RefreshTokenNotFound", env.Errors[0].Code)

	// logout through the cookie
	req := httptest.NewRequest(http.MethodDelete, "/api/authentication/logout", nil)
	req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: session.AccessToken})
	rec, env = e.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `"`+services.LoggedOutMessage+`"`, string(env.Value))
	assert.Equal(t, "true", rec.Header().Get(common.SessionEndedHeaderName))

	c := findCookie(rec, common.AccessTokenCookieName)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)

	rec, _ = e.do(t, jsonRequest(http.MethodPost, "/api/authentication/refresh-token", `{"refreshToken":"`+session.RefreshToken+`"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_Unauthorized(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"anonymous", func(r *http.Request) {}},
		{"invalid bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }},
		{"invalid cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: "nope"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/authentication/logout", nil)
			tt.setup(req)
			rec, env := e.do(t, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Len(t, env.Errors, 1)
			assert.Equal(t, "UnauthorizedAccess", env.Errors[0].Code)
		})
	}
}

func TestLogout_BearerWithoutSession(t *testing.T) {
	e := newTestEnv(t)
	user, err := e.dir.Register(context.Background(), "dave@example.com", "dave", "pw", nil)
	require.NoError(t, err)

	token, err := e.codec.IssueAccessToken(auth.Claims{Subject: user.ID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/authentication/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec, env := e.do(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.IsSuccess)
}

func TestRouting(t *testing.T) {
	e := newTestEnv(t)

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/authentication/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics\n", rec.Body.String())
}

func TestRecoverPanics(t *testing.T) {
	h := &Handlers{logger: logging.Nop{}}
	handler := h.recoverPanics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "ServerError")
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, bearerToken(req))

	req.Header.Set("Authorization", "Bearer  abc ")
	assert.Equal(t, "abc", bearerToken(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", bearerToken(req))
}
