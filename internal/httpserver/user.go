package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/service"
	"github.com/Skotchmaster/ecommerce_api/internal/transport"
	"github.com/Skotchmaster/ecommerce_api/pkg/logging"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_users")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(l, "get_users_failed", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create_user")

	claim, err := claimOf(c)
	if err != nil {
		return fail(l, "create_user_failed", err)
	}

	var req transport.UserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_user_failed", "invalid body", err)
	}

	u, err := h.Svc.AddUser(ctx, claim, req)
	if err != nil {
		return fail(l, "create_user_failed", err)
	}

	l.Info("create_user_success", "user_id", u.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "User added", "userId": u.ID})
}
