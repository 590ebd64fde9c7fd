package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/pkg/pagination"
)

// Handler provides the HTTP surface for the audit trail.
type Handler struct {
	svc      *QueryService
	resolver *ResourceNameResolver
}

func NewHandler(svc *QueryService, resolver *ResourceNameResolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

// RegisterRoutes registers the audit routes on the provided group. The caller
// is expected to gate the group with a permission check.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/audit-events", h.ListEvents)
	g.GET("/audit-events/export/csv", h.ExportCSV)
	g.GET("/audit-events/export/json", h.ExportJSON)
	g.GET("/audit-events/:id", h.GetEvent)
}

// parseFilter extracts a Filter from query parameters. Malformed values are
// ignored rather than rejected; an unfilterable request just returns more.
func parseFilter(c echo.Context) Filter {
	var f Filter
	if v := c.QueryParam("user_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.UserID = &id
		}
	}
	f.Action = c.QueryParam("action")
	f.ResourceType = c.QueryParam("resource_type")
	if v := c.QueryParam("resource_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.ResourceID = &id
		}
	}
	if v := c.QueryParam("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = &t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = &t
		}
	}
	return f
}

func (h *Handler) ListEvents(c echo.Context) error {
	pg := pagination.FromContext(c)
	page, err := h.svc.Query(c.Request().Context(), parseFilter(c), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "audit query failed")
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) GetEvent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	event, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "audit event not found")
	}
	if event.ResourceID != nil {
		c.Response().Header().Set("X-Resource-Name",
			h.resolver.Resolve(c.Request().Context(), event.ResourceType, *event.ResourceID))
	}
	return c.JSON(http.StatusOK, event)
}

// exportLimit bounds export size per request.
const exportLimit = 10000

func (h *Handler) ExportCSV(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=\"audit_export_%s.csv\"", time.Now().UTC().Format("20060102_150405")))
	c.Response().WriteHeader(http.StatusOK)
	return h.writeCSV(c, c.Response())
}

func (h *Handler) writeCSV(c echo.Context, w io.Writer) error {
	page, err := h.svc.Query(c.Request().Context(), parseFilter(c), exportLimit, 0)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"ID", "Timestamp", "UserID", "ActorName", "Action",
		"ResourceType", "ResourceID", "IPAddress", "UserAgent", "Detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("audit export csv: write header: %w", err)
	}

	for _, e := range page.Events {
		userID, resourceID, detail := "", "", ""
		if e.UserID != nil {
			userID = e.UserID.String()
		}
		if e.ResourceID != nil {
			resourceID = e.ResourceID.String()
		}
		if e.Detail != nil {
			raw, _ := json.Marshal(e.Detail)
			detail = string(raw)
		}
		record := []string{
			e.ID.String(),
			e.CreatedAt.Format(time.RFC3339),
			userID,
			e.ActorName,
			e.Action,
			e.ResourceType,
			resourceID,
			e.IPAddress,
			e.UserAgent,
			detail,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("audit export csv: write record: %w", err)
		}
	}
	return nil
}

func (h *Handler) ExportJSON(c echo.Context) error {
	page, err := h.svc.Query(c.Request().Context(), parseFilter(c), exportLimit, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "audit query failed")
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=\"audit_export_%s.json\"", time.Now().UTC().Format("20060102_150405")))
	c.Response().WriteHeader(http.StatusOK)

	enc := json.NewEncoder(c.Response())
	enc.SetIndent("", "  ")
	return enc.Encode(page.Events)
}
