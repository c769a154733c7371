package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_api/internal/metrics"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/tokens"
)

type testEnv struct {
	E      *echo.Echo
	Tokens *tokens.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ts, err := tokens.NewService([]byte("mw-secret"), "HS256", time.Hour)
	require.NoError(t, err)
	mw := New(ts, metrics.New())

	e := echo.New()
	whoami := func(c echo.Context) error {
		name, ok := Username(c)
		return c.JSON(http.StatusOK, map[string]any{"username": name, "ok": ok, "role": Role(c)})
	}
	e.GET("/private", whoami, mw.RequireAuth)
	admin := e.Group("/admin", mw.RequireAdmin)
	admin.GET("", whoami)
	e.GET("/optional", whoami, mw.OptionalAuth)

	return &testEnv{E: e, Tokens: ts}
}

func (env *testEnv) do(t *testing.T, path, authHeader string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	userToken, err := env.Tokens.Issue("alice", models.RoleUser)
	require.NoError(t, err)

	expiredSvc := env.Tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, err := expiredSvc.Issue("alice", models.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{name: "no header", header: "", wantStatus: http.StatusUnauthorized, wantMsg: MsgMissingToken},
		{name: "wrong scheme", header: "Token " + userToken, wantStatus: http.StatusUnauthorized, wantMsg: MsgMissingToken},
		{name: "garbage token", header: "Bearer abc", wantStatus: http.StatusUnauthorized, wantMsg: MsgInvalidToken},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantMsg: MsgExpiredToken},
		{name: "valid token", header: "Bearer " + userToken, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, "/private", tt.header)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["message"])
				return
			}
			assert.Equal(t, "alice", body["username"])
			assert.Equal(t, "user", body["role"])
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	userToken, err := env.Tokens.Issue("bob", models.RoleUser)
	require.NoError(t, err)
	adminToken, err := env.Tokens.Issue("root", models.RoleAdmin)
	require.NoError(t, err)

	rec, body := env.do(t, "/admin", "Bearer "+userToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, MsgForbidden, body["message"])

	rec, _ = env.do(t, "/admin", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = env.do(t, "/admin", "Bearer "+adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "root", body["username"])
	assert.Equal(t, "admin", body["role"])
}

func TestOptionalAuth(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, "/optional", "Bearer broken")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["ok"])

	token, err := env.Tokens.Issue("carol", models.RoleUser)
	require.NoError(t, err)
	rec, body = env.do(t, "/optional", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "carol", body["username"])
}
