package catalog

import (
	"context"
	"time"
)

type Repository interface {
	CreateBook(ctx context.Context, b *Book) error
	GetBook(ctx context.Context, id uint64) (*Book, error)
	// GetBookForUpdate locks the book row; reservation queue changes for a book serialize on it.
	GetBookForUpdate(ctx context.Context, id uint64) (*Book, error)

	CreateCopy(ctx context.Context, c *BookCopy) error
	GetCopy(ctx context.Context, id uint64) (*BookCopy, error)
	ListCopiesByBook(ctx context.Context, bookID uint64) ([]BookCopy, error)
	CountCopiesByStatus(ctx context.Context, bookID uint64, status CopyStatus) (int64, error)

	// Conditional transitions: they report false when the copy was not in the expected status,
	// which is how concurrent callers lose a race.
	MarkBorrowed(ctx context.Context, copyID uint64, from CopyStatus, at time.Time) (bool, error)
	TransitionCopy(ctx context.Context, copyID uint64, from, to CopyStatus) (bool, error)
	UpdateCondition(ctx context.Context, copyID uint64, c Condition) error
}
