package catalogmock

import (
	"context"
	"time"

	domain "library-backend/internal/domain/catalog"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateBookFn          func(ctx context.Context, b *domain.Book) error
	GetBookFn             func(ctx context.Context, id uint64) (*domain.Book, error)
	GetBookForUpdateFn    func(ctx context.Context, id uint64) (*domain.Book, error)
	CreateCopyFn          func(ctx context.Context, c *domain.BookCopy) error
	GetCopyFn             func(ctx context.Context, id uint64) (*domain.BookCopy, error)
	ListCopiesByBookFn    func(ctx context.Context, bookID uint64) ([]domain.BookCopy, error)
	CountCopiesByStatusFn func(ctx context.Context, bookID uint64, status domain.CopyStatus) (int64, error)
	MarkBorrowedFn        func(ctx context.Context, copyID uint64, from domain.CopyStatus, at time.Time) (bool, error)
	TransitionCopyFn      func(ctx context.Context, copyID uint64, from, to domain.CopyStatus) (bool, error)
	UpdateConditionFn     func(ctx context.Context, copyID uint64, c domain.Condition) error
}

func (m *Repo) CreateBook(ctx context.Context, b *domain.Book) error {
	if m.CreateBookFn != nil {
		return m.CreateBookFn(ctx, b)
	}
	return nil
}

func (m *Repo) GetBook(ctx context.Context, id uint64) (*domain.Book, error) {
	if m.GetBookFn != nil {
		return m.GetBookFn(ctx, id)
	}
	return nil, context.Canceled
}

// GetBookForUpdate falls back to GetBookFn when no locking variant is set.
func (m *Repo) GetBookForUpdate(ctx context.Context, id uint64) (*domain.Book, error) {
	if m.GetBookForUpdateFn != nil {
		return m.GetBookForUpdateFn(ctx, id)
	}
	return m.GetBook(ctx, id)
}

func (m *Repo) CreateCopy(ctx context.Context, c *domain.BookCopy) error {
	if m.CreateCopyFn != nil {
		return m.CreateCopyFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetCopy(ctx context.Context, id uint64) (*domain.BookCopy, error) {
	if m.GetCopyFn != nil {
		return m.GetCopyFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListCopiesByBook(ctx context.Context, bookID uint64) ([]domain.BookCopy, error) {
	if m.ListCopiesByBookFn != nil {
		return m.ListCopiesByBookFn(ctx, bookID)
	}
	return nil, context.Canceled
}

func (m *Repo) CountCopiesByStatus(ctx context.Context, bookID uint64, status domain.CopyStatus) (int64, error) {
	if m.CountCopiesByStatusFn != nil {
		return m.CountCopiesByStatusFn(ctx, bookID, status)
	}
	return 0, nil
}

func (m *Repo) MarkBorrowed(ctx context.Context, copyID uint64, from domain.CopyStatus, at time.Time) (bool, error) {
	if m.MarkBorrowedFn != nil {
		return m.MarkBorrowedFn(ctx, copyID, from, at)
	}
	return true, nil
}

func (m *Repo) TransitionCopy(ctx context.Context, copyID uint64, from, to domain.CopyStatus) (bool, error) {
	if m.TransitionCopyFn != nil {
		return m.TransitionCopyFn(ctx, copyID, from, to)
	}
	return true, nil
}

func (m *Repo) UpdateCondition(ctx context.Context, copyID uint64, c domain.Condition) error {
	if m.UpdateConditionFn != nil {
		return m.UpdateConditionFn(ctx, copyID, c)
	}
	return nil
}
