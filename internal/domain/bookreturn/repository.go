package bookreturn

import "context"

type Repository interface {
	Create(ctx context.Context, r *Return) error
	Save(ctx context.Context, r *Return) error
	GetByReturnID(ctx context.Context, returnID string) (*Return, error)
	GetByReturnIDForUpdate(ctx context.Context, returnID string) (*Return, error)
	// GetPendingByBorrowingID finds the return still awaiting approval, if any.
	GetPendingByBorrowingID(ctx context.Context, borrowingID uint64) (*Return, error)
}
