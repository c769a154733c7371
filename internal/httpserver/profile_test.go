package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/service"
)

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.register("alice", "pw1", "")
	admin := env.register("root", "pw", models.RoleAdmin)

	phone := "+100200300"
	require.NoError(t, env.DB.Model(&models.User{}).Where("username = ?", "alice").Update("phone", phone).Error)

	rec := env.doJSONRequest(http.MethodGet, "/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.Profile{
		Username:   "alice",
		Email:      "alice@example.com",
		Phone:      phone,
		Membership: "Regular",
	}, decode[service.Profile](t, rec))

	rec = env.doJSONRequest(http.MethodGet, "/profile", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[service.Profile](t, rec)
	assert.Equal(t, "Staff", p.Membership)
	assert.Equal(t, "not specified", p.Phone)
}

func TestProfile_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSONRequest(http.MethodGet, "/profile", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile_GuestFallback(t *testing.T) {
	env := newTestEnv(t, func(o *envOptions) { o.guestFallback = true })

	for _, token := range []string{"", "not-a-jwt"} {
		rec := env.doJSONRequest(http.MethodGet, "/profile", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, *service.GuestProfile(), decode[service.Profile](t, rec))
	}

	token := env.register("alice", "pw1", "")
	rec := env.doJSONRequest(http.MethodGet, "/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[service.Profile](t, rec).Username)

	require.NoError(t, env.DB.Where("username = ?", "alice").Delete(&models.User{}).Error)
	rec = env.doJSONRequest(http.MethodGet, "/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guest", decode[service.Profile](t, rec).Username)
}
