package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/careledger/careledger/internal/platform/audit"
	"github.com/careledger/careledger/internal/platform/auth"
)

// AuditContext copies the authenticated actor and the request's transport
// origin into the context as audit request metadata, so the recorder and the
// permission evaluator receive everything through explicit context instead of
// ambient globals. Must run after the auth middleware.
func AuditContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			meta := audit.RequestMeta{
				ActorID:   auth.ActorUUIDFromContext(ctx),
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
			}
			c.SetRequest(c.Request().WithContext(audit.WithRequestMeta(ctx, meta)))
			return next(c)
		}
	}
}

// AccessLog emits a structured access event for every API request, and hands
// mutating requests to the recorder as a coarse trail entry alongside the
// finer-grained domain-level events. Recorder failures are logged and never
// fail the request.
func AccessLog(logger zerolog.Logger, recorder *audit.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			if !strings.HasPrefix(path, "/api/v1/") {
				return next(c)
			}

			err := next(c)

			ctx := req.Context()
			action := methodToAction(req.Method)
			resourceType := resourceTypeFromPath(path)

			if recorder != nil && isMutation(req.Method) && c.Response().Status < http.StatusBadRequest {
				if recErr := recorder.Record(ctx, action, resourceType); recErr != nil {
					logger.Error().Err(recErr).Str("path", path).Msg("access trail write failed")
				}
			}

			logger.Info().
				Str("type", "access").
				Str("user_id", auth.UserIDFromContext(ctx)).
				Str("action", action).
				Str("resource_type", resourceType).
				Str("method", req.Method).
				Str("path", path).
				Str("remote_ip", c.RealIP()).
				Int("status", c.Response().Status).
				Msg("api_access")

			return err
		}
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return audit.ActionCreate
	case http.MethodPut, http.MethodPatch:
		return audit.ActionUpdate
	case http.MethodDelete:
		return audit.ActionDelete
	default:
		return audit.ActionView
	}
}

// resourceTypeFromPath maps /api/v1/patients/123 to "patient", matching the
// singular resource tags the domain-level recorder calls use so one mutation
// filters under one resource_type.
func resourceTypeFromPath(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "unknown"
	}
	return strings.TrimSuffix(segments[0], "s")
}
