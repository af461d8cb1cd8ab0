package uowmock

import (
	"context"
	"errors"

	"library-backend/internal/domain/borrowing"
	"library-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn          func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinBorrowingTxFn func(ctx context.Context, borrowingID string, fn func(r uow.Repos, b *borrowing.Borrowing) error) error
}

// Passthrough runs every callback directly against repos, with no real tx.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(r uow.Repos) error) error {
			return fn(repos)
		},
		WithinBorrowingTxFn: func(ctx context.Context, id string, fn func(r uow.Repos, b *borrowing.Borrowing) error) error {
			b, err := repos.Borrowings.GetByBorrowingIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return fn(repos, b)
		},
	}
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinBorrowingTx(fn func(context.Context, string, func(uow.Repos, *borrowing.Borrowing) error) error) *UoW {
	m.WithinBorrowingTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinBorrowingTx(ctx context.Context, borrowingID string, fn func(r uow.Repos, b *borrowing.Borrowing) error) error {
	if m.WithinBorrowingTxFn != nil {
		return m.WithinBorrowingTxFn(ctx, borrowingID, fn)
	}
	return errUnimplemented
}
