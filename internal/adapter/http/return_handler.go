package http

import (
	"context"
	"net/http"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/bookreturn"
	"library-backend/internal/usecase/returns"

	"github.com/labstack/echo/v4"
)

type ReturnHandler struct{ uc *returns.Usecase }

func NewReturnHandler(uc *returns.Usecase) *ReturnHandler { return &ReturnHandler{uc: uc} }

// Process records a return. Fine-free returns complete immediately (201),
// fined ones wait for approval (202).
func (h *ReturnHandler) Process(c echo.Context) error {
	var req returns.ProcessReturnInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ProcessReturn(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return writeError(c, err)
	}
	status := http.StatusCreated
	if dto.ApprovalStatus == string(bookreturn.ApprovalPending) {
		status = http.StatusAccepted
	}
	return c.JSON(status, dto)
}

func (h *ReturnHandler) Get(c echo.Context) error { return h.action(c, h.uc.Get) }

func (h *ReturnHandler) Approve(c echo.Context) error { return h.action(c, h.uc.Approve) }

func (h *ReturnHandler) PayFine(c echo.Context) error { return h.action(c, h.uc.PayFine) }

func (h *ReturnHandler) WaiveFine(c echo.Context) error { return h.action(c, h.uc.WaiveFine) }

func (h *ReturnHandler) Reject(c echo.Context) error {
	id, ok, err := stringParam(c, "return_id")
	if !ok {
		return err
	}
	var req returns.RejectInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Reject(c.Request().Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ReturnHandler) action(c echo.Context, do func(context.Context, actor.Actor, string) (*returns.ReturnDTO, error)) error {
	id, ok, err := stringParam(c, "return_id")
	if !ok {
		return err
	}
	dto, err := do(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
