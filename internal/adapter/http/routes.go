package http

import (
	"net/http"

	"library-backend/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health       *Handler
	Borrowings   *BorrowingHandler
	Returns      *ReturnHandler
	Reservations *ReservationHandler
	Settings     *SettingsHandler
	Catalog      *CatalogHandler
}

// RegisterRoutes mounts the API. Everything but /health needs the gateway identity
// headers; idem, when non-nil, guards the mutating routes.
//
// Middleware is attached per route rather than to a group, so unknown paths fall
// through to echo's 404 instead of the identity check.
func RegisterRoutes(e *echo.Echo, h Handlers, idem echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	authed := func(method, path string, fn echo.HandlerFunc, staffOnly bool) {
		mw := []echo.MiddlewareFunc{middleware.Actor()}
		if staffOnly {
			mw = append(mw, middleware.RequireStaff())
		}
		if idem != nil {
			mw = append(mw, idem)
		}
		e.Add(method, path, fn, mw...)
	}
	const (
		anyone = false
		staff  = true
	)

	authed(http.MethodPost, "/borrowings", h.Borrowings.Create, anyone)
	authed(http.MethodGet, "/borrowings/:borrowing_id", h.Borrowings.Get, anyone)
	authed(http.MethodGet, "/users/:user_id/borrowings", h.Borrowings.ListByUser, anyone)
	authed(http.MethodPost, "/borrowings/:borrowing_id/approve", h.Borrowings.Approve, staff)
	authed(http.MethodPost, "/borrowings/:borrowing_id/reject", h.Borrowings.Reject, staff)
	authed(http.MethodPost, "/borrowings/:borrowing_id/renew", h.Borrowings.Renew, anyone)
	authed(http.MethodPost, "/borrowings/:borrowing_id/cancel", h.Borrowings.Cancel, anyone)

	authed(http.MethodPost, "/returns", h.Returns.Process, staff)
	authed(http.MethodGet, "/returns/:return_id", h.Returns.Get, anyone)
	authed(http.MethodPost, "/returns/:return_id/approve", h.Returns.Approve, staff)
	authed(http.MethodPost, "/returns/:return_id/reject", h.Returns.Reject, staff)
	authed(http.MethodPost, "/returns/:return_id/pay-fine", h.Returns.PayFine, staff)
	authed(http.MethodPost, "/returns/:return_id/waive-fine", h.Returns.WaiveFine, staff)

	authed(http.MethodPost, "/reservations", h.Reservations.Enqueue, anyone)
	authed(http.MethodGet, "/reservations/:reservation_id", h.Reservations.Get, anyone)
	authed(http.MethodPost, "/reservations/:reservation_id/cancel", h.Reservations.Cancel, anyone)
	authed(http.MethodPost, "/reservations/:reservation_id/fulfill", h.Reservations.Fulfill, staff)
	authed(http.MethodGet, "/books/:book_id/reservations", h.Reservations.ListByBook, anyone)

	authed(http.MethodGet, "/settings", h.Settings.Get, anyone)
	authed(http.MethodGet, "/settings/status", h.Settings.Status, anyone)
	authed(http.MethodPut, "/settings", h.Settings.Update, staff)

	authed(http.MethodPost, "/books", h.Catalog.CreateBook, staff)
	authed(http.MethodGet, "/books/:book_id", h.Catalog.GetBook, anyone)
	authed(http.MethodGet, "/books/:book_id/copies", h.Catalog.ListCopies, anyone)
	authed(http.MethodPost, "/books/:book_id/copies", h.Catalog.AddCopy, staff)

	authed(http.MethodGet, "/fine-types", h.Catalog.ListFineTypes, anyone)
	authed(http.MethodPost, "/fine-types", h.Catalog.CreateFineType, staff)
	authed(http.MethodPost, "/fine-types/:id/deactivate", h.Catalog.DeactivateFineType, staff)
}
