package fine

import "context"

type Repository interface {
	Create(ctx context.Context, ft *FineType) error
	Save(ctx context.Context, ft *FineType) error
	GetByID(ctx context.Context, id uint64) (*FineType, error)
	List(ctx context.Context) ([]FineType, error)
	ListActiveByCondition(ctx context.Context, c Condition) ([]FineType, error)
}
