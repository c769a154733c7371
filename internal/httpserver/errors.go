package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/shop_api/internal/middleware/auth"
)

const (
	msgInternal     = "internal server error"
	msgUserGone     = "user no longer exists"
	msgUnauthorized = "unauthorized"
)

// internalError logs the cause and hides it from the client.
func internalError(l *slog.Logger, event string, err error) error {
	l.Error(event, "status", http.StatusInternalServerError, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
}

func currentUser(c echo.Context) (string, error) {
	username, ok := authmw.Username(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}
	return username, nil
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "id must be a positive integer")
	}
	return uint(id), nil
}
