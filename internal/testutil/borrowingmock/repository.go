package borrowingmock

import (
	"context"
	"time"

	domain "library-backend/internal/domain/borrowing"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled, unset writes are no-ops.
type Repo struct {
	CreateFn                    func(ctx context.Context, b *domain.Borrowing) error
	SaveFn                      func(ctx context.Context, b *domain.Borrowing) error
	GetByBorrowingIDFn          func(ctx context.Context, borrowingID string) (*domain.Borrowing, error)
	GetByBorrowingIDForUpdateFn func(ctx context.Context, borrowingID string) (*domain.Borrowing, error)
	GetByIDFn                   func(ctx context.Context, id uint64) (*domain.Borrowing, error)
	GetByIDForUpdateFn          func(ctx context.Context, id uint64) (*domain.Borrowing, error)
	ListByUserFn                func(ctx context.Context, userID string) ([]domain.Borrowing, error)
	CountOpenByUserFn           func(ctx context.Context, userID string) (int64, error)
	HasPendingForCopyFn         func(ctx context.Context, copyID uint64) (bool, error)
	FlagOverdueFn               func(ctx context.Context, before, at time.Time) (int64, error)
	ClearOverdueFn              func(ctx context.Context, before time.Time) (int64, error)
}

func (m *Repo) Create(ctx context.Context, b *domain.Borrowing) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, b *domain.Borrowing) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, b)
	}
	return nil
}

func (m *Repo) GetByBorrowingID(ctx context.Context, borrowingID string) (*domain.Borrowing, error) {
	if m.GetByBorrowingIDFn != nil {
		return m.GetByBorrowingIDFn(ctx, borrowingID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByBorrowingIDForUpdate(ctx context.Context, borrowingID string) (*domain.Borrowing, error) {
	if m.GetByBorrowingIDForUpdateFn != nil {
		return m.GetByBorrowingIDForUpdateFn(ctx, borrowingID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Borrowing, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Borrowing, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByUser(ctx context.Context, userID string) ([]domain.Borrowing, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) CountOpenByUser(ctx context.Context, userID string) (int64, error) {
	if m.CountOpenByUserFn != nil {
		return m.CountOpenByUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *Repo) HasPendingForCopy(ctx context.Context, copyID uint64) (bool, error) {
	if m.HasPendingForCopyFn != nil {
		return m.HasPendingForCopyFn(ctx, copyID)
	}
	return false, nil
}

func (m *Repo) FlagOverdue(ctx context.Context, before, at time.Time) (int64, error) {
	if m.FlagOverdueFn != nil {
		return m.FlagOverdueFn(ctx, before, at)
	}
	return 0, nil
}

func (m *Repo) ClearOverdue(ctx context.Context, before time.Time) (int64, error) {
	if m.ClearOverdueFn != nil {
		return m.ClearOverdueFn(ctx, before)
	}
	return 0, nil
}
