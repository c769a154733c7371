package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/repo"
	"github.com/Skotchmaster/shop_api/internal/service"
	"github.com/Skotchmaster/shop_api/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func cartError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, repo.ErrUserNotFound):
		l.Warn(event, "status", http.StatusUnauthorized, "reason", "token user missing")
		return echo.NewHTTPError(http.StatusUnauthorized, msgUserGone)
	case errors.Is(err, repo.ErrProductNotFound):
		l.Warn(event, "status", http.StatusNotFound, "reason", "product missing")
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", http.StatusUnprocessableEntity, "error", err)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return internalError(l, event, err)
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	username, err := currentUser(c)
	if err != nil {
		return err
	}

	lines, err := h.Svc.List(ctx, username)
	if err != nil {
		return cartError(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, lines)
}

// UpdateCart answers with the resulting line, or null when an absent line
// was asked to be removed.
func (h *CartHTTP) UpdateCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	username, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.CartUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("update_cart_error", "status", http.StatusUnprocessableEntity, "error", err)
		return err
	}

	view, err := h.Svc.Set(ctx, username, req.ProductID, *req.Amount)
	if err != nil {
		if *req.Amount <= 0 && errors.Is(err, repo.ErrNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return cartError(l, "update_cart_error", err)
	}

	l.Info("cart_updated", "product_id", req.ProductID, "amount", *req.Amount)
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) UpdateAmount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_amount")

	username, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.CartUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("update_amount_error", "status", http.StatusUnprocessableEntity, "error", err)
		return err
	}

	amount, err := h.Svc.SetAmount(ctx, username, req.ProductID, *req.Amount)
	if err != nil {
		return cartError(l, "update_amount_error", err)
	}
	return c.JSON(http.StatusOK, amount)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	username, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Clear(ctx, username); err != nil {
		return cartError(l, "clear_cart_error", err)
	}

	l.Info("cart_cleared")
	return c.NoContent(http.StatusNoContent)
}
