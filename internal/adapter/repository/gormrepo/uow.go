package gormrepo

import (
	"context"

	"library-backend/internal/domain/borrowing"
	"library-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Catalog:      &CatalogRepository{db: tx},
		Borrowings:   &BorrowingRepository{db: tx},
		Returns:      &ReturnRepository{db: tx},
		FineTypes:    &FineTypeRepository{db: tx},
		Reservations: &ReservationRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

// WithinBorrowingTx locks the borrowing row before anything else runs in the tx.
func (u *GormUoW) WithinBorrowingTx(ctx context.Context, borrowingID string, fn func(r uow.Repos, b *borrowing.Borrowing) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		b, err := r.Borrowings.GetByBorrowingIDForUpdate(ctx, borrowingID)
		if err != nil {
			return err
		}
		return fn(r, b)
	})
}

var _ uow.UnitOfWork = (*GormUoW)(nil)
