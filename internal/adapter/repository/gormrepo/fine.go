package gormrepo

import (
	"context"
	"errors"

	"library-backend/internal/domain/fine"

	"gorm.io/gorm"
)

type FineTypeRepository struct{ db *gorm.DB }

func NewFineTypeRepository(db *gorm.DB) *FineTypeRepository { return &FineTypeRepository{db: db} }

func (r *FineTypeRepository) Create(ctx context.Context, ft *fine.FineType) error {
	err := r.db.WithContext(ctx).Create(ft).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fine.ErrDuplicateCode
	}
	return err
}

func (r *FineTypeRepository) Save(ctx context.Context, ft *fine.FineType) error {
	return r.db.WithContext(ctx).Save(ft).Error
}

func (r *FineTypeRepository) GetByID(ctx context.Context, id uint64) (*fine.FineType, error) {
	var out fine.FineType
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *FineTypeRepository) List(ctx context.Context) ([]fine.FineType, error) {
	var out []fine.FineType
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, res.Error
}

// ListActiveByCondition returns every active match ordered by id; callers decide on duplicates.
func (r *FineTypeRepository) ListActiveByCondition(ctx context.Context, c fine.Condition) ([]fine.FineType, error) {
	var out []fine.FineType
	res := r.db.WithContext(ctx).
		Where("book_condition = ? AND is_active = ?", c, true).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
