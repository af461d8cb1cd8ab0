package borrowing

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, b *Borrowing) error
	Save(ctx context.Context, b *Borrowing) error
	GetByBorrowingID(ctx context.Context, borrowingID string) (*Borrowing, error)
	// GetByBorrowingIDForUpdate locks the row until the surrounding tx ends.
	GetByBorrowingIDForUpdate(ctx context.Context, borrowingID string) (*Borrowing, error)
	GetByID(ctx context.Context, id uint64) (*Borrowing, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Borrowing, error)
	ListByUser(ctx context.Context, userID string) ([]Borrowing, error)

	// CountOpenByUser counts pending and active borrowings of a user.
	CountOpenByUser(ctx context.Context, userID string) (int64, error)
	HasPendingForCopy(ctx context.Context, copyID uint64) (bool, error)

	// Overdue materialization used by the sweep.
	FlagOverdue(ctx context.Context, before, at time.Time) (int64, error)
	ClearOverdue(ctx context.Context, before time.Time) (int64, error)
}
