package http

import (
	"net/http"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/usecase/reservation"

	"github.com/labstack/echo/v4"
)

type ReservationHandler struct{ uc *reservation.Usecase }

func NewReservationHandler(uc *reservation.Usecase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

func (h *ReservationHandler) Enqueue(c echo.Context) error {
	var req reservation.EnqueueInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Enqueue(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok, err := stringParam(c, "reservation_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ReservationHandler) ListByBook(c echo.Context) error {
	bookID, ok, err := uintParam(c, "book_id")
	if !ok {
		return err
	}
	out, err := h.uc.ListByBook(c.Request().Context(), middleware.ActorFrom(c), bookID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"reservations": out})
}

func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, ok, err := stringParam(c, "reservation_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Cancel(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Fulfill hands the held copy to the reserving user as an active borrowing.
func (h *ReservationHandler) Fulfill(c echo.Context) error {
	id, ok, err := stringParam(c, "reservation_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Fulfill(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
