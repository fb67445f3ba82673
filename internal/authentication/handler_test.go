package authentication

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mehmetcc/videotube-auth-service/internal/person"
	"github.com/mehmetcc/videotube-auth-service/internal/utils"
)

type httpEnv struct {
	*sessionEnv
	router *gin.Engine
}

func newHTTPEnv(t *testing.T) *httpEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, person.RegisterValidators())
	env := &httpEnv{sessionEnv: newSessionEnv(t, true), router: gin.New()}
	logger := zaptest.NewLogger(t)
	persons := person.NewPersonService(env.store, env.hasher, person.PasswordPolicy{}, logger)

	auth := AuthMiddleware(persons, env.issuer, logger)
	api := env.router.Group("/api/v1")
	admin := api.Group("/admin", auth, RoleMiddleware(person.Admin, logger))
	admin.GET("/ping", func(c *gin.Context) { utils.Respond(c, http.StatusOK, gin.H{}, "pong") })

	routes := utils.Routes{
		Public:  api.Group(""),
		Secured: api.Group("", auth),
		Admin:   admin,
	}
	person.NewPersonHandler(routes, persons, logger)
	NewAuthHandler(routes, env.service, CookieOptions{AccessTTL: 15 * time.Minute, RefreshTTL: 24 * time.Hour}, logger)
	return env
}

type call struct {
	method  string
	path    string
	body    any
	cookies []*http.Cookie
	bearer  string
}

func (e *httpEnv) do(t *testing.T, cl call) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if cl.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(cl.body))
	}
	req := httptest.NewRequest(cl.method, cl.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	if cl.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+cl.bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func cookiesByName(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range w.Result().Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func (e *httpEnv) login(t *testing.T) map[string]*http.Cookie {
	t.Helper()
	w, resp := e.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/login",
		body:   gin.H{"username": "alice", "password": "secret1"},
	})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	return cookiesByName(w)
}

func TestLoginHandler_SetsCookiesAndEnvelope(t *testing.T) {
	env := newHTTPEnv(t)
	env.register(t, "secret1")

	w, resp := env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/login",
		body:   gin.H{"email": "ALICE@x.com", "password": "secret1"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "User logged in successfully", resp.Message)

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")

	cookies := cookiesByName(w)
	require.Contains(t, cookies, AccessTokenCookie)
	require.Contains(t, cookies, RefreshTokenCookie)
	assert.True(t, cookies[RefreshTokenCookie].HttpOnly)
	assert.Equal(t, data["refreshToken"], cookies[RefreshTokenCookie].Value)
}

func TestLoginHandler_Failures(t *testing.T) {
	env := newHTTPEnv(t)
	env.register(t, "secret1")

	cases := []struct {
		name string
		body gin.H
		want int
	}{
		{"missing password", gin.H{"username": "alice"}, http.StatusBadRequest},
		{"missing identifier", gin.H{"password": "secret1"}, http.StatusBadRequest},
		{"unknown user", gin.H{"username": "bob", "password": "secret1"}, http.StatusNotFound},
		{"wrong password", gin.H{"username": "alice", "password": "nope"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/users/login", body: tc.body})
			assert.Equal(t, tc.want, w.Code)
			assert.False(t, resp.Success)
			assert.Empty(t, cookiesByName(w))
		})
	}
}

func TestRefreshHandler_CookieThenBody(t *testing.T) {
	env := newHTTPEnv(t)
	env.register(t, "secret1")
	first := env.login(t)

	w, resp := env.do(t, call{
		method:  http.MethodPost,
		path:    "/api/v1/users/refresh-token",
		cookies: []*http.Cookie{first[RefreshTokenCookie]},
	})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	second := resp.Data.(map[string]any)["refreshToken"].(string)
	assert.NotEqual(t, first[RefreshTokenCookie].Value, second)
	assert.Equal(t, second, cookiesByName(w)[RefreshTokenCookie].Value)

	// the rotated-away token is rejected
	w, _ = env.do(t, call{
		method:  http.MethodPost,
		path:    "/api/v1/users/refresh-token",
		cookies: []*http.Cookie{first[RefreshTokenCookie]},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/refresh-token",
		body:   gin.H{"refreshToken": second},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshHandler_NoToken(t *testing.T) {
	env := newHTTPEnv(t)

	w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/users/refresh-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized request", resp.Message)
}

func TestLogoutHandler_ClearsSession(t *testing.T) {
	env := newHTTPEnv(t)
	id := env.register(t, "secret1")
	cookies := env.login(t)

	w, resp := env.do(t, call{
		method:  http.MethodPost,
		path:    "/api/v1/users/logout",
		cookies: []*http.Cookie{cookies[AccessTokenCookie]},
	})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	cleared := cookiesByName(w)
	require.Contains(t, cleared, RefreshTokenCookie)
	assert.Empty(t, cleared[RefreshTokenCookie].Value)
	assert.Negative(t, cleared[RefreshTokenCookie].MaxAge)
	assert.Nil(t, env.store.get(id).RefreshToken)

	w, _ = env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/refresh-token",
		body:   gin.H{"refreshToken": cookies[RefreshTokenCookie].Value},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePasswordHandler(t *testing.T) {
	env := newHTTPEnv(t)
	env.register(t, "secret1")
	cookies := env.login(t)
	access := cookies[AccessTokenCookie].Value

	w, _ := env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/change-password",
		bearer: access,
		body:   gin.H{"oldPassword": "wrong", "newPassword": "N3w!passw0rd"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp := env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/change-password",
		bearer: access,
		body:   gin.H{"oldPassword": "secret1", "newPassword": "a1!" + strings.Repeat("é", 40)},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, person.ErrPasswordTooLong.Error(), resp.Message)

	w, resp = env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/change-password",
		bearer: access,
		body:   gin.H{"oldPassword": "secret1", "newPassword": "N3w!passw0rd"},
	})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)

	// sessions are revoked in this env
	w, _ = env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/refresh-token",
		body:   gin.H{"refreshToken": cookies[RefreshTokenCookie].Value},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/login",
		body:   gin.H{"username": "alice", "password": "N3w!passw0rd"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	env := newHTTPEnv(t)
	env.register(t, "secret1")
	cookies := env.login(t)
	access := cookies[AccessTokenCookie].Value
	logout := func(cl call) int {
		cl.method, cl.path = http.MethodPost, "/api/v1/users/logout"
		w, _ := env.do(t, cl)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, logout(call{}))
	assert.Equal(t, http.StatusUnauthorized, logout(call{bearer: "garbage"}))
	assert.Equal(t, http.StatusUnauthorized, logout(call{bearer: cookies[RefreshTokenCookie].Value}))
	assert.Equal(t, http.StatusOK, logout(call{bearer: access}))
	assert.Equal(t, http.StatusOK, logout(call{cookies: []*http.Cookie{cookies[AccessTokenCookie]}}))

	env.clock.Advance(16 * time.Minute)
	assert.Equal(t, http.StatusUnauthorized, logout(call{bearer: access}))
}

func TestAuthMiddleware_DeletedUser(t *testing.T) {
	env := newHTTPEnv(t)
	id := env.register(t, "secret1")
	access := env.login(t)[AccessTokenCookie].Value

	env.store.mu.Lock()
	delete(env.store.persons, id)
	env.store.mu.Unlock()

	w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/users/logout", bearer: access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid access token", resp.Message)
}

func TestRoleMiddleware(t *testing.T) {
	env := newHTTPEnv(t)
	id := env.register(t, "secret1")
	access := env.login(t)[AccessTokenCookie].Value

	w, _ := env.do(t, call{method: http.MethodGet, path: "/api/v1/admin/ping", bearer: access})
	assert.Equal(t, http.StatusForbidden, w.Code)

	env.store.mu.Lock()
	env.store.persons[id].Role = person.Admin
	env.store.mu.Unlock()

	w, _ = env.do(t, call{method: http.MethodGet, path: "/api/v1/admin/ping", bearer: access})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterLoginRefreshScenario(t *testing.T) {
	env := newHTTPEnv(t)

	w, resp := env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/register",
		body:   gin.H{"username": "alice", "email": "alice@x.com", "fullName": "Alice", "password": "secret1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)

	w, resp = env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/login",
		body:   gin.H{"username": "alice", "password": "secret1"},
	})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	r1 := resp.Data.(map[string]any)["refreshToken"].(string)

	w, resp = env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/refresh-token",
		body:   gin.H{"refreshToken": r1},
	})
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	r2 := resp.Data.(map[string]any)["refreshToken"].(string)
	assert.NotEqual(t, r1, r2)

	w, resp = env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/refresh-token",
		body:   gin.H{"refreshToken": r1},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "refresh token is expired or used", resp.Message)
}

func TestRegisterHandler_PasswordOverByteLimit(t *testing.T) {
	env := newHTTPEnv(t)

	w, resp := env.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/users/register",
		body:   gin.H{"username": "alice", "email": "alice@x.com", "fullName": "Alice", "password": "a1!" + strings.Repeat("é", 40)},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, person.ErrPasswordTooLong.Error(), resp.Message)
	assert.Empty(t, env.store.persons)
}
