package http

import (
	"context"
	"net/http"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/domain/actor"
	"library-backend/internal/usecase/borrowing"

	"github.com/labstack/echo/v4"
)

type BorrowingHandler struct{ uc *borrowing.Usecase }

func NewBorrowingHandler(uc *borrowing.Usecase) *BorrowingHandler { return &BorrowingHandler{uc: uc} }

// Create opens one pending borrowing per requested copy.
func (h *BorrowingHandler) Create(c echo.Context) error {
	var req borrowing.CreateInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	out, err := h.uc.Create(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"borrowings": out})
}

func (h *BorrowingHandler) Get(c echo.Context) error {
	id, ok, err := stringParam(c, "borrowing_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowingHandler) ListByUser(c echo.Context) error {
	userID, ok, err := stringParam(c, "user_id")
	if !ok {
		return err
	}
	out, err := h.uc.ListByUser(c.Request().Context(), middleware.ActorFrom(c), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"borrowings": out})
}

func (h *BorrowingHandler) Approve(c echo.Context) error {
	return h.transition(c, h.uc.Approve)
}

func (h *BorrowingHandler) Renew(c echo.Context) error {
	return h.transition(c, h.uc.Renew)
}

func (h *BorrowingHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.uc.Cancel)
}

func (h *BorrowingHandler) Reject(c echo.Context) error {
	id, ok, err := stringParam(c, "borrowing_id")
	if !ok {
		return err
	}
	var req borrowing.RejectInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Reject(c.Request().Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type borrowingAction func(ctx context.Context, a actor.Actor, borrowingID string) (*borrowing.BorrowingDTO, error)

func (h *BorrowingHandler) transition(c echo.Context, do borrowingAction) error {
	id, ok, err := stringParam(c, "borrowing_id")
	if !ok {
		return err
	}
	dto, err := do(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
