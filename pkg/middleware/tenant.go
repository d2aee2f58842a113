package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/context"
)

// RequireTenant rejects requests without an X-Tenant-ID header
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if context.GetTenantID(c.Request().Context()) == "" {
				return httperror.NewHTTPErrorf(http.StatusBadRequest, "missing %s header", HeaderTenantID)
			}
			return next(c)
		}
	}
}
