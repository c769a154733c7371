package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/metrics"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/tokens"
)

const (
	ctxUsername = "username"
	ctxRole     = "role"
)

const (
	MsgMissingToken = "missing or malformed authorization header"
	MsgExpiredToken = "token expired"
	MsgInvalidToken = "invalid token"
	MsgForbidden    = "forbidden"
)

type Middleware struct {
	Tokens  *tokens.Service
	Metrics *metrics.Metrics
}

func New(ts *tokens.Service, m *metrics.Metrics) *Middleware {
	return &Middleware{Tokens: ts, Metrics: m}
}

type ValidatorFunc func(claims *tokens.Claims) error

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.Claims) error {
		if claims.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, MsgForbidden)
		}
		return nil
	})
}

// OptionalAuth forwards every request. Claims are attached only when the
// bearer token is valid.
func (m *Middleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims, err := m.claimsFromRequest(c); err == nil {
			setUserContext(c, claims)
		}
		return next(c)
	}
}

func (m *Middleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.claimsFromRequest(c)
		if err != nil {
			l := logging.FromContext(c.Request().Context())
			reason, httpErr := rejection(err)
			m.Metrics.TokenRejected(reason)
			l.Warn("auth_rejected", "status", httpErr.Code, "reason", reason)
			return httpErr
		}

		if validator != nil {
			if validationErr := validator(claims); validationErr != nil {
				m.Metrics.TokenRejected("role")
				logging.FromContext(c.Request().Context()).Warn("auth_rejected",
					"status", http.StatusForbidden, "reason", "role", "username", claims.Username, "role", claims.Role)
				return validationErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func (m *Middleware) claimsFromRequest(c echo.Context) (*tokens.Claims, error) {
	raw, err := tokens.FromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return nil, err
	}
	return m.Tokens.Validate(raw)
}

func rejection(err error) (string, *echo.HTTPError) {
	switch {
	case errors.Is(err, tokens.ErrMissingToken):
		return "missing", echo.NewHTTPError(http.StatusUnauthorized, MsgMissingToken)
	case errors.Is(err, tokens.ErrExpiredToken):
		return "expired", echo.NewHTTPError(http.StatusUnauthorized, MsgExpiredToken)
	default:
		return "invalid", echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidToken)
	}
}

func setUserContext(c echo.Context, claims *tokens.Claims) {
	c.Set(ctxUsername, claims.Username)
	c.Set(ctxRole, claims.Role)

	c.SetRequest(c.Request().WithContext(logging.With(c.Request().Context(), "username", claims.Username)))
}

// Username returns the authenticated username stored by the middleware.
func Username(c echo.Context) (string, bool) {
	s, ok := c.Get(ctxUsername).(string)
	return s, ok && s != ""
}

func Role(c echo.Context) models.Role {
	r, _ := c.Get(ctxRole).(models.Role)
	return r
}
