package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/domain/actor"
	domain "library-backend/internal/domain/borrowing"
	"library-backend/internal/testutil/borrowingmock"
	"library-backend/internal/testutil/settingsmock"
	"library-backend/internal/testutil/uowmock"
	uc "library-backend/internal/usecase/borrowing"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newBorrowingHandler(repo *borrowingmock.Repo) *BorrowingHandler {
	u := uc.NewUsecase(repo, &uowmock.UoW{}, settingsmock.Open(), nil, domain.DefaultPolicy())
	return NewBorrowingHandler(u)
}

func TestGetBorrowing_Success(t *testing.T) {
	e := echo.New()
	due := time.Now().UTC().Add(72 * time.Hour)
	h := newBorrowingHandler(&borrowingmock.Repo{
		GetByBorrowingIDFn: func(ctx context.Context, id string) (*domain.Borrowing, error) {
			return &domain.Borrowing{
				BorrowingID: id,
				UserID:      strings.Repeat("a", 32),
				Status:      domain.StatusActive,
				DueDate:     &due,
				MaxRenewals: 2,
			}, nil
		},
	})

	req := httptest.NewRequest(stdhttp.MethodGet, "/borrowings/"+strings.Repeat("f", 32), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("borrowing_id")
	c.SetParamValues(strings.Repeat("f", 32))
	middleware.WithActor(c, actor.Actor{UserID: strings.Repeat("a", 32), Role: actor.RoleMember})

	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var dto uc.BorrowingDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.BorrowingID != strings.Repeat("f", 32) || dto.Status != "active" || dto.Overdue {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestGetBorrowing_NotFound(t *testing.T) {
	e := echo.New()
	h := newBorrowingHandler(&borrowingmock.Repo{
		GetByBorrowingIDFn: func(ctx context.Context, id string) (*domain.Borrowing, error) {
			return nil, gorm.ErrRecordNotFound
		},
	})

	req := httptest.NewRequest(stdhttp.MethodGet, "/borrowings/xxx", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("borrowing_id")
	c.SetParamValues("xxx")
	middleware.WithActor(c, actor.Actor{UserID: strings.Repeat("c", 32), Role: actor.RoleLibrarian})

	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Code != "BORROWING_NOT_FOUND" {
		t.Fatalf("code = %q, want BORROWING_NOT_FOUND", er.Code)
	}
}

func TestCreateBorrowing_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h := newBorrowingHandler(&borrowingmock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/borrowings", strings.NewReader(`{"user_id":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "invalid body" {
		t.Fatalf("error = %q, want %q", er.Error, "invalid body")
	}
}

func TestCreateBorrowing_ValidationError(t *testing.T) {
	e := newEchoWithValidator()
	h := newBorrowingHandler(&borrowingmock.Repo{}) // won't be called

	req := httptest.NewRequest(stdhttp.MethodPost, "/borrowings",
		strings.NewReader(`{"user_id":"NOT_HEX_32","copy_ids":[1,2,3,4,5,6]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if !containsFieldMsg(er.Details, "UserID", "32-char lowercase hex") {
		t.Fatalf("missing hex32 detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "CopyIDs", "at most 5") {
		t.Fatalf("missing max detail: %+v", er.Details)
	}
}

func TestRejectBorrowing_RequiresReason(t *testing.T) {
	e := newEchoWithValidator()
	h := newBorrowingHandler(&borrowingmock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/borrowings/abc/reject", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("borrowing_id")
	c.SetParamValues("abc")

	if err := h.Reject(c); err != nil {
		t.Fatalf("Reject error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}
