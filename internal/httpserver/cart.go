package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/service"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "get_cart_failed", err)
	}

	lines, err := h.Svc.GetCart(ctx, claim)
	if err != nil {
		return fail(l, "get_cart_failed", err)
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_to_cart")

	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "add_to_cart_failed", err)
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_failed", "invalid body", err)
	}

	item, err := h.Svc.AddToCart(ctx, claim, req)
	if err != nil {
		return fail(l, "add_to_cart_failed", err)
	}

	l.Info("add_to_cart_success", "cart_item_id", item.ID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_from_cart")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "remove_from_cart_failed", "id is not integer", err)
	}
	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "remove_from_cart_failed", err)
	}

	if err := h.Svc.RemoveFromCart(ctx, claim, id); err != nil {
		return fail(l, "remove_from_cart_failed", err)
	}

	l.Info("remove_from_cart_success", "cart_item_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Item removed"})
}
