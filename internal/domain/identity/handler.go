package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/platform/rbac"
	"github.com/careledger/careledger/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the user and role administration routes. The
// caller gates the group with a permission check.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.POST("/users", h.CreateUser)
	g.GET("/users/:id", h.GetUser)
	g.POST("/users/:id/roles", h.AssignRole)
	g.DELETE("/users/:id/roles/:role", h.RevokeRole)
	g.PUT("/users/:id/roles", h.ChangeRole)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list users failed")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateUser(c echo.Context) error {
	var user User
	if err := c.Bind(&user); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.svc.CreateUser(c.Request().Context(), &user); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	user, err := h.svc.GetUserWithRoles(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

type roleRequest struct {
	Role    string `json:"role"`
	OldRole string `json:"old_role"`
}

func (h *Handler) AssignRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req roleRequest
	if err := c.Bind(&req); err != nil || req.Role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "role is required")
	}

	if err := h.svc.AssignRole(c.Request().Context(), id, req.Role); err != nil {
		if errors.Is(err, rbac.ErrRoleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "role not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "assign role failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RevokeRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RevokeRole(c.Request().Context(), id, c.Param("role")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "revoke role failed")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ChangeRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req roleRequest
	if err := c.Bind(&req); err != nil || req.Role == "" || req.OldRole == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "role and old_role are required")
	}

	if err := h.svc.ChangeRole(c.Request().Context(), id, req.OldRole, req.Role); err != nil {
		if errors.Is(err, rbac.ErrCompensationFailed) {
			return echo.NewHTTPError(http.StatusConflict, "role change failed and could not be rolled back")
		}
		if errors.Is(err, rbac.ErrRoleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "role not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "change role failed")
	}
	return c.NoContent(http.StatusNoContent)
}
