package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/shop_api/internal/events"
	"github.com/Skotchmaster/shop_api/internal/hash"
	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/metrics"
	authmw "github.com/Skotchmaster/shop_api/internal/middleware/auth"
	"github.com/Skotchmaster/shop_api/internal/middleware/ratelimit"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/repo"
	"github.com/Skotchmaster/shop_api/internal/service"
	"github.com/Skotchmaster/shop_api/internal/tokens"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *tokens.Service
	Ready  error
}

type envOptions struct {
	guestFallback bool
	limiter       *ratelimit.Limiter
}

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartLine{}))
	return db
}

func newTestEnv(t *testing.T, opts ...func(*envOptions)) *testEnv {
	t.Helper()

	var o envOptions
	for _, opt := range opts {
		opt(&o)
	}

	db := InitTestDB(t)
	r := repo.New(db, 5*time.Second)
	ts, err := tokens.NewService([]byte("http-secret"), "HS256", time.Hour)
	require.NoError(t, err)

	m := metrics.New()
	n := service.Notifier{Events: events.Nop{}, Metrics: m}

	authSvc := service.NewAuthService(r, ts, n, true)
	authSvc.HashPassword = func(pw string) (string, error) {
		return hash.HashPasswordWith(pw, hash.Params{Memory: 8 * 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32})
	}

	env := &testEnv{T: t, DB: db, Tokens: ts}

	e := NewEcho(logging.NewWithWriter(io.Discard, "error"), m)
	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{Svc: authSvc},
		CartHandler:    &CartHTTP{Svc: service.NewCartService(r, n)},
		CatalogHandler: &CatalogHTTP{Svc: service.NewCatalogService(r, n)},
		ProfileHandler: &ProfileHTTP{Svc: service.NewProfileService(r), GuestFallback: o.guestFallback},
		AuthMW:         authmw.New(ts, m),
		AuthLimiter:    o.limiter,
		Metrics:        m,
		Ready:          func(context.Context) error { return env.Ready },
	})
	env.E = e
	return env
}

func (env *testEnv) doJSONRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(env.T, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) register(username, password string, role models.Role) string {
	env.T.Helper()

	rec := env.doJSONRequest(http.MethodPost, "/auth/registration", map[string]any{
		"username": username, "password": password, "role": role,
	}, "")
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["token"].(string)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusNoContent, env.doJSONRequest(http.MethodGet, "/health/live", nil, "").Code)
	require.Equal(t, http.StatusNoContent, env.doJSONRequest(http.MethodGet, "/health/ready", nil, "").Code)

	env.Ready = errors.New("db down")
	require.Equal(t, http.StatusServiceUnavailable, env.doJSONRequest(http.MethodGet, "/health/ready", nil, "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.doJSONRequest(http.MethodGet, "/cart", nil, "")

	rec := env.doJSONRequest(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `shop_api_auth_token_rejections_total{reason="missing"} 1`)
	require.Contains(t, rec.Body.String(), `shop_api_http_requests_total{method="GET",route="/cart",status="401"} 1`)
}
