package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/logging"
	authmw "github.com/Skotchmaster/shop_api/internal/middleware/auth"
	"github.com/Skotchmaster/shop_api/internal/repo"
	"github.com/Skotchmaster/shop_api/internal/service"
)

type ProfileHTTP struct {
	Svc *service.ProfileService
	// GuestFallback answers unauthenticated callers with the guest profile
	// instead of 401. The route must then use OptionalAuth.
	GuestFallback bool
}

func (h *ProfileHTTP) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.get")

	username, ok := authmw.Username(c)
	if !ok {
		if h.GuestFallback {
			return c.JSON(http.StatusOK, service.GuestProfile())
		}
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}

	profile, err := h.Svc.Profile(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			if h.GuestFallback {
				return c.JSON(http.StatusOK, service.GuestProfile())
			}
			l.Warn("get_profile_error", "status", http.StatusUnauthorized, "reason", "token user missing")
			return echo.NewHTTPError(http.StatusUnauthorized, msgUserGone)
		}
		return internalError(l, "get_profile_error", err)
	}
	return c.JSON(http.StatusOK, profile)
}
