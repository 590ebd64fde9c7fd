package clinic

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the clinic routes. Mutating routes carry the extra
// edit gate on top of whatever the group enforces.
func (h *Handler) RegisterRoutes(g *echo.Group, edit echo.MiddlewareFunc) {
	g.GET("/clinics", h.List)
	g.POST("/clinics", h.Create, edit)
	g.GET("/clinics/:id", h.Get)
	g.PUT("/clinics/:id", h.Update, edit)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	clinics, total, err := h.svc.ListClinics(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list clinics failed")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(clinics, total, pg.Limit, pg.Offset))
}

func (h *Handler) Create(c echo.Context) error {
	var clinic Clinic
	if err := c.Bind(&clinic); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.svc.CreateClinic(c.Request().Context(), &clinic); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, clinic)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	clinic, err := h.svc.GetClinic(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "clinic not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "get clinic failed")
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var clinic Clinic
	if err := c.Bind(&clinic); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	clinic.ID = id
	if err := h.svc.UpdateClinic(c.Request().Context(), &clinic); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "clinic not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "update clinic failed")
	}
	return c.JSON(http.StatusOK, clinic)
}
