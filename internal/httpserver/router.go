package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/metrics"
	authmw "github.com/Skotchmaster/shop_api/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/shop_api/internal/middleware/logging"
	"github.com/Skotchmaster/shop_api/internal/middleware/ratelimit"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CartHandler    *CartHTTP
	CatalogHandler *CatalogHTTP
	ProfileHandler *ProfileHTTP

	AuthMW      *authmw.Middleware
	AuthLimiter *ratelimit.Limiter
	Metrics     *metrics.Metrics

	// Ready reports whether the store answers; nil means always ready.
	Ready func(ctx context.Context) error
}

// NewEcho builds the echo instance with the shared middleware stack.
func NewEcho(logger *slog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(loggingmw.RequestLogger(logger))
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(echomw.CORS())
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusNoContent)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	auth := e.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter.Middleware)
	}
	auth.POST("/registration", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	cart := e.Group("/cart", d.AuthMW.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.UpdateCart)
	cart.POST("/update_amount", d.CartHandler.UpdateAmount)
	cart.DELETE("", d.CartHandler.ClearCart)

	products := e.Group("/products", d.AuthMW.RequireAuth)
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	admin := e.Group("/products", d.AuthMW.RequireAdmin)
	admin.POST("", d.CatalogHandler.CreateProduct)
	admin.PUT("/:id", d.CatalogHandler.UpdateProduct)
	admin.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	profileGuard := d.AuthMW.RequireAuth
	if d.ProfileHandler.GuestFallback {
		profileGuard = d.AuthMW.OptionalAuth
	}
	e.GET("/profile", d.ProfileHandler.GetProfile, profileGuard)
}
