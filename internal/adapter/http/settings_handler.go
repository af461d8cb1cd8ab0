package http

import (
	"net/http"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/usecase/settings"

	"github.com/labstack/echo/v4"
)

type SettingsHandler struct{ uc *settings.Usecase }

func NewSettingsHandler(uc *settings.Usecase) *SettingsHandler { return &SettingsHandler{uc: uc} }

func (h *SettingsHandler) Get(c echo.Context) error {
	s, err := h.uc.Current(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Status reports whether the library is operational right now.
func (h *SettingsHandler) Status(c echo.Context) error {
	st, err := h.uc.Status(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *SettingsHandler) Update(c echo.Context) error {
	var req settings.UpdateInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	s, err := h.uc.Update(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
