package uow

import (
	"context"

	"library-backend/internal/domain/bookreturn"
	"library-backend/internal/domain/borrowing"
	"library-backend/internal/domain/catalog"
	"library-backend/internal/domain/fine"
	"library-backend/internal/domain/reservation"
)

// Repos are bound to one transaction.
type Repos struct {
	Catalog      catalog.Repository
	Borrowings   borrowing.Repository
	Returns      bookreturn.Repository
	FineTypes    fine.Repository
	Reservations reservation.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the borrowing first, then pass it in
	WithinBorrowingTx(ctx context.Context, borrowingID string, fn func(r Repos, b *borrowing.Borrowing) error) error
}
