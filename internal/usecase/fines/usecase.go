package fines

import (
	"context"
	"errors"
	"strings"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/fine"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Usecase struct{ repo fine.Repository }

func NewUsecase(r fine.Repository) *Usecase { return &Usecase{repo: r} }

type CreateInput struct {
	Code          string          `json:"code" validate:"required,max=64"`
	BookCondition string          `json:"book_condition" validate:"required,fine_condition"`
	Amount        decimal.Decimal `json:"amount"`
}

func (u *Usecase) List(ctx context.Context) ([]fine.FineType, error) {
	list, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []fine.FineType{}
	}
	return list, nil
}

// Create adds an active fine type; one active type per condition is allowed.
func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CreateInput) (*fine.FineType, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	cond := fine.Condition(in.BookCondition)
	if !cond.Valid() {
		return nil, apperr.Validationf("book_condition must be one of fair, poor, damaged, lost")
	}
	if in.Amount.IsNegative() {
		return nil, apperr.Validationf("amount must not be negative")
	}
	active, err := u.repo.ListActiveByCondition(ctx, cond)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, fine.ErrDuplicateActive
	}
	ft := &fine.FineType{
		Code:          strings.ToUpper(strings.TrimSpace(in.Code)),
		BookCondition: cond,
		Amount:        in.Amount.Round(2),
		IsActive:      true,
	}
	if err := u.repo.Create(ctx, ft); err != nil {
		return nil, err
	}
	return ft, nil
}

func (u *Usecase) Deactivate(ctx context.Context, a actor.Actor, id uint64) (*fine.FineType, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	ft, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fine.ErrNotFound
		}
		return nil, err
	}
	if !ft.IsActive {
		return ft, nil
	}
	ft.IsActive = false
	if err := u.repo.Save(ctx, ft); err != nil {
		return nil, err
	}
	return ft, nil
}
