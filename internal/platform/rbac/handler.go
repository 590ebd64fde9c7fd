package rbac

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/platform/audit"
)

// Handler exposes role and permission administration. All mutations are
// audited.
type Handler struct {
	store    Store
	recorder *audit.Recorder
}

func NewHandler(store Store, recorder *audit.Recorder) *Handler {
	return &Handler{store: store, recorder: recorder}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/roles", h.ListRoles)
	g.POST("/roles", h.CreateRole)
	g.GET("/permissions", h.ListPermissions)
	g.POST("/permissions", h.CreatePermission)
	g.POST("/roles/:role/permissions", h.GrantPermission)
	g.DELETE("/roles/:role/permissions/:permission", h.RevokePermission)
}

func (h *Handler) ListRoles(c echo.Context) error {
	roles, err := h.store.ListRoles(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list roles failed")
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *Handler) CreateRole(c echo.Context) error {
	var role Role
	if err := c.Bind(&role); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if role.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "role name is required")
	}
	if err := h.store.CreateRole(c.Request().Context(), &role); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "create role failed")
	}
	_ = h.recorder.RecordCreate(c.Request().Context(), "role", audit.WithResourceID(role.ID))
	return c.JSON(http.StatusCreated, role)
}

func (h *Handler) ListPermissions(c echo.Context) error {
	perms, err := h.store.ListPermissions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list permissions failed")
	}
	return c.JSON(http.StatusOK, perms)
}

func (h *Handler) CreatePermission(c echo.Context) error {
	var perm Permission
	if err := c.Bind(&perm); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if perm.Name == "" || perm.Resource == "" || perm.Action == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, resource, and action are required")
	}
	if err := h.store.CreatePermission(c.Request().Context(), &perm); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "create permission failed")
	}
	_ = h.recorder.RecordCreate(c.Request().Context(), "permission", audit.WithResourceID(perm.ID))
	return c.JSON(http.StatusCreated, perm)
}

type grantRequest struct {
	Permission string `json:"permission"`
}

func (h *Handler) GrantPermission(c echo.Context) error {
	ctx := c.Request().Context()

	role, err := h.store.RoleByName(ctx, c.Param("role"))
	if errors.Is(err, ErrRoleNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "role not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "role lookup failed")
	}

	var req grantRequest
	if err := c.Bind(&req); err != nil || req.Permission == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "permission is required")
	}

	perm, err := h.store.PermissionByName(ctx, req.Permission)
	if errors.Is(err, ErrPermissionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "permission not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "permission lookup failed")
	}

	if err := h.store.GrantPermission(ctx, role.ID, perm.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "grant failed")
	}
	_ = h.recorder.RecordUpdate(ctx, "role",
		audit.WithResourceID(role.ID),
		audit.WithDetail(map[string]any{"granted_permission": perm.Name}))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RevokePermission(c echo.Context) error {
	ctx := c.Request().Context()

	role, err := h.store.RoleByName(ctx, c.Param("role"))
	if errors.Is(err, ErrRoleNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "role not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "role lookup failed")
	}

	perm, err := h.store.PermissionByName(ctx, c.Param("permission"))
	if errors.Is(err, ErrPermissionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "permission not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "permission lookup failed")
	}

	if err := h.store.RevokePermission(ctx, role.ID, perm.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "revoke failed")
	}
	_ = h.recorder.RecordUpdate(ctx, "role",
		audit.WithResourceID(role.ID),
		audit.WithDetail(map[string]any{"revoked_permission": perm.Name}))
	return c.NoContent(http.StatusNoContent)
}
