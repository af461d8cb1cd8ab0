package middleware

import (
	"net/http"
	"strings"

	"library-backend/internal/domain/actor"
	"library-backend/pkg/id"

	"github.com/labstack/echo/v4"
)

// Identity headers set by the gateway after authentication.
const (
	HeaderUserID   = "Ax-User-Id"
	HeaderUserRole = "Ax-User-Role"
)

const actorKey = "actor"

// Actor reads the caller identity from the gateway headers. Requests without a
// valid identity never reach the handlers.
func Actor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if !id.Valid(uid) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid " + HeaderUserID})
			}
			role := actor.Role(strings.ToLower(strings.TrimSpace(c.Request().Header.Get(HeaderUserRole))))
			if !role.Valid() {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid " + HeaderUserRole})
			}
			c.Set(actorKey, actor.Actor{UserID: uid, Role: role})
			return next(c)
		}
	}
}

// RequireStaff rejects members. It must run after Actor.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ActorFrom(c).IsStaff() {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "staff only"})
			}
			return next(c)
		}
	}
}

// ActorFrom returns the caller set by Actor, or the zero Actor.
func ActorFrom(c echo.Context) actor.Actor {
	a, _ := c.Get(actorKey).(actor.Actor)
	return a
}

// WithActor stores a on the context; handler tests use it instead of headers.
func WithActor(c echo.Context, a actor.Actor) { c.Set(actorKey, a) }
