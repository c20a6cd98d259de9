package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/service"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	orders, err := h.Svc.ListOrders(ctx, c.QueryParam("productName"))
	if err != nil {
		return fail(l, "get_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "create_order_failed", err)
	}

	var req transport.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_failed", "invalid body", err)
	}

	order, err := h.Svc.PlaceOrder(ctx, claim, req)
	if err != nil {
		return fail(l, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "product_id", order.ProductID, "quantity", order.Quantity)
	return c.JSON(http.StatusOK, echo.Map{"message": "Order placed", "orderId": order.ID})
}

func (h *OrderHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "update_order_failed", "id is not integer", err)
	}
	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "update_order_failed", err)
	}

	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_failed", "invalid body", err)
	}

	order, err := h.Svc.UpdateOrder(ctx, claim, id, req)
	if err != nil {
		return fail(l, "update_order_failed", err)
	}

	l.Info("update_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Order updated", "orderId": order.ID})
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "delete_order_failed", "id is not integer", err)
	}
	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "delete_order_failed", err)
	}

	if err := h.Svc.DeleteOrder(ctx, claim, id); err != nil {
		return fail(l, "delete_order_failed", err)
	}

	l.Info("delete_order_success", "order_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Order deleted"})
}
