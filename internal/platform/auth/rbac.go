package auth

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/platform/rbac"
)

// RequirePermission returns middleware that consults the store-backed
// evaluator before letting the request through. Requests without a parseable
// actor identity are rejected outright; the evaluator itself fails closed on
// store faults, so this middleware can only ever deny by default.
func RequirePermission(ev *rbac.Evaluator, resource, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			actor := ActorUUIDFromContext(ctx)
			if actor == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !ev.HasPermission(ctx, *actor, resource, action) {
				return echo.NewHTTPError(http.StatusForbidden,
					fmt.Sprintf("required permission: %s:%s", resource, action))
			}
			return next(c)
		}
	}
}
