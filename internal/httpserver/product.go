package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/pagination"
	"github.com/Skotchmaster/shop_api/internal/repo"
	"github.com/Skotchmaster/shop_api/internal/service"
	"github.com/Skotchmaster/shop_api/internal/transport"
)

const (
	msgProductNotFound  = "product not found"
	msgProductDuplicate = "product with this name already exists"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	var (
		items []models.Product
		err   error
	)
	if page, ok := pagination.FromQuery(c.QueryParam("page"), c.QueryParam("size")); ok {
		items, err = h.Svc.ListPage(ctx, page)
	} else {
		items, err = h.Svc.List(ctx)
	}
	if err != nil {
		return internalError(l, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.Svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("get_product_failed", "status", http.StatusNotFound, "id", id)
			return echo.NewHTTPError(http.StatusNotFound, msgProductNotFound)
		}
		return internalError(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("product_create_error", "status", http.StatusUnprocessableEntity, "error", err)
		return err
	}

	created, err := h.Svc.Create(ctx, req.Model())
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateName):
			l.Warn("product_create_error", "status", http.StatusConflict, "name", req.Name)
			return echo.NewHTTPError(http.StatusConflict, msgProductDuplicate)
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_create_error", "status", http.StatusUnprocessableEntity, "error", err)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return internalError(l, "product_create_error", err)
	}

	l.Info("create_product_success", "id", created.ID)
	return c.JSON(http.StatusOK, created)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("product_update_error", "status", http.StatusUnprocessableEntity, "error", err)
		return err
	}

	updated, err := h.Svc.Update(ctx, id, req.Model())
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			l.Warn("product_update_error", "status", http.StatusNotFound, "id", id)
			return echo.NewHTTPError(http.StatusNotFound, msgProductNotFound)
		case errors.Is(err, repo.ErrDuplicateName):
			l.Warn("product_update_error", "status", http.StatusConflict, "name", req.Name)
			return echo.NewHTTPError(http.StatusConflict, msgProductDuplicate)
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_update_error", "status", http.StatusUnprocessableEntity, "error", err)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return internalError(l, "product_update_error", err)
	}

	l.Info("update_product_success", "id", id)
	return c.JSON(http.StatusOK, updated)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("product_delete_error", "status", http.StatusNotFound, "id", id)
			return echo.NewHTTPError(http.StatusNotFound, msgProductNotFound)
		}
		return internalError(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "product deleted"})
}
