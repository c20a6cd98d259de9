package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	"github.com/Skotchmaster/ecommerce_api/internal/service"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/internal/util"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_categories")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(l, "get_categories_failed", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "create_category_failed", err)
	}

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_category_failed", "invalid body", err)
	}

	cat, err := h.Svc.AddCategory(ctx, claim, req)
	if err != nil {
		return fail(l, "create_category_failed", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Category added", "categoryId": cat.ID})
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_category")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "delete_category_failed", "id is not integer", err)
	}
	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "delete_category_failed", err)
	}

	if err := h.Svc.DeleteCategory(ctx, claim, id); err != nil {
		return fail(l, "delete_category_failed", err)
	}

	l.Info("delete_category_success", "category_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted"})
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	f := repo.ProductFilter{Query: c.QueryParam("q")}
	if raw := c.QueryParam("categoryId"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			return badRequest(l, "get_products_failed", "categoryId is not integer", err)
		}
		id := uint(n)
		f.CategoryID = &id
	}

	items, err := h.Svc.ListProducts(ctx, f)
	if err != nil {
		return fail(l, "get_products_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_products_failed", err)
	}

	_, limit := util.Calculate(page, size)
	return c.JSON(http.StatusOK, transport.SearchResponse{
		Total:    total,
		Page:     max(page, 1),
		Size:     limit,
		Products: items,
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "get_product_failed", "id is not integer", err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "create_product_failed", err)
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product_failed", "invalid body", err)
	}

	p, err := h.Svc.AddProduct(ctx, claim, req)
	if err != nil {
		return fail(l, "create_product_failed", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product added", "productId": p.ID})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "update_product_failed", "id is not integer", err)
	}
	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "update_product_failed", err)
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_product_failed", "invalid body", err)
	}

	p, err := h.Svc.UpdateProduct(ctx, claim, id, req)
	if err != nil {
		return fail(l, "update_product_failed", err)
	}

	l.Info("update_product_success", "product_id", p.ID, "version", p.Version)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product updated", "version": p.Version})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "delete_product_failed", "id is not integer", err)
	}
	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "delete_product_failed", err)
	}

	res, err := h.Svc.DeleteProduct(ctx, claim, id)
	if err != nil {
		return fail(l, "delete_product_failed", err)
	}

	l.Info("delete_product_success", "product_id", id, "orders_removed", res.Orders, "cart_items_removed", res.CartItems)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted"})
}
