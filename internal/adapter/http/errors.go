package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"library-backend/internal/domain/apperr"

	"github.com/labstack/echo/v4"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation: http.StatusBadRequest,
	apperr.KindConflict:   http.StatusConflict,
	apperr.KindPolicy:     http.StatusUnprocessableEntity,
	apperr.KindNotFound:   http.StatusNotFound,
	apperr.KindForbidden:  http.StatusForbidden,
}

// writeError maps domain errors to HTTP codes. Unknown errors are logged and hidden.
func writeError(c echo.Context, err error) error {
	status, ok := statusByKind[apperr.KindOf(err)]
	if !ok {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: apperr.CodeOf(err)})
	}
	return c.JSON(status, ErrorResponse{Error: err.Error(), Code: apperr.CodeOf(err)})
}

// decode binds and validates req. When it returns false the error response is already written.
func decode(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// uintParam parses a numeric path param. When it returns false the error response is already written.
func uintParam(c echo.Context, name string) (uint64, bool, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + " path param"})
	}
	return v, true, nil
}

// stringParam requires a non-empty path param.
func stringParam(c echo.Context, name string) (string, bool, error) {
	v := c.Param(name)
	if v == "" {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + name + " path param"})
	}
	return v, true, nil
}
