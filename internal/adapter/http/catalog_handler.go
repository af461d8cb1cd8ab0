package http

import (
	"net/http"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/usecase/catalog"
	"library-backend/internal/usecase/fines"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	books *catalog.Usecase
	fines *fines.Usecase
}

func NewCatalogHandler(books *catalog.Usecase, fineTypes *fines.Usecase) *CatalogHandler {
	return &CatalogHandler{books: books, fines: fineTypes}
}

func (h *CatalogHandler) CreateBook(c echo.Context) error {
	var req catalog.CreateBookInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	dto, err := h.books.CreateBook(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *CatalogHandler) GetBook(c echo.Context) error {
	id, ok, err := uintParam(c, "book_id")
	if !ok {
		return err
	}
	dto, err := h.books.GetBook(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *CatalogHandler) AddCopy(c echo.Context) error {
	id, ok, err := uintParam(c, "book_id")
	if !ok {
		return err
	}
	var req catalog.AddCopyInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	cp, err := h.books.AddCopy(c.Request().Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cp)
}

func (h *CatalogHandler) ListCopies(c echo.Context) error {
	id, ok, err := uintParam(c, "book_id")
	if !ok {
		return err
	}
	list, err := h.books.ListCopies(c.Request().Context(), id, c.QueryParam("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"copies": list})
}

func (h *CatalogHandler) ListFineTypes(c echo.Context) error {
	list, err := h.fines.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"fine_types": list})
}

func (h *CatalogHandler) CreateFineType(c echo.Context) error {
	var req fines.CreateInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	ft, err := h.fines.Create(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ft)
}

func (h *CatalogHandler) DeactivateFineType(c echo.Context) error {
	id, ok, err := uintParam(c, "id")
	if !ok {
		return err
	}
	ft, err := h.fines.Deactivate(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ft)
}
