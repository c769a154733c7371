package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/repo"
	"github.com/Skotchmaster/shop_api/internal/service"
	"github.com/Skotchmaster/shop_api/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("register_error", "status", http.StatusUnprocessableEntity, "error", err)
		return err
	}

	res, err := h.Svc.Register(ctx, req.Username, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrUserExists):
			l.Warn("register_error", "status", http.StatusConflict, "reason", "username taken")
			return echo.NewHTTPError(http.StatusConflict, "username already registered")
		case errors.Is(err, service.ErrAdminSignupDisabled):
			l.Warn("register_error", "status", http.StatusForbidden, "reason", "admin signup disabled")
			return echo.NewHTTPError(http.StatusForbidden, "admin registration is disabled")
		case errors.Is(err, service.ErrValidation):
			l.Warn("register_error", "status", http.StatusUnprocessableEntity, "error", err)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return internalError(l, "register_error", err)
	}

	return c.JSON(http.StatusCreated, transport.RegisterResponse{
		Message: "user registered",
		Token:   res.Token,
		Role:    res.Role,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("login_error", "status", http.StatusUnprocessableEntity, "error", err)
		return err
	}

	token, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrUserNotFound):
			l.Warn("login_failed", "status", http.StatusUnauthorized, "reason", "unknown user", "username", req.Username)
			return echo.NewHTTPError(http.StatusUnauthorized, "user does not exist")
		case errors.Is(err, repo.ErrInvalidCredentials):
			l.Warn("login_failed", "status", http.StatusUnauthorized, "reason", "wrong password", "username", req.Username)
			return echo.NewHTTPError(http.StatusUnauthorized, "wrong password")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return internalError(l, "login_error", err)
	}

	l.Info("login_successful", "username", req.Username)
	return c.JSON(http.StatusOK, transport.LoginResponse{
		Message: "login successful",
		Token:   token,
	})
}
