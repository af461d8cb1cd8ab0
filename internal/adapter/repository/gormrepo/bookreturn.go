package gormrepo

import (
	"context"

	"library-backend/internal/domain/bookreturn"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReturnRepository struct{ db *gorm.DB }

func NewReturnRepository(db *gorm.DB) *ReturnRepository { return &ReturnRepository{db: db} }

func (r *ReturnRepository) Create(ctx context.Context, ret *bookreturn.Return) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *ReturnRepository) Save(ctx context.Context, ret *bookreturn.Return) error {
	return r.db.WithContext(ctx).Save(ret).Error
}

func (r *ReturnRepository) GetByReturnID(ctx context.Context, returnID string) (*bookreturn.Return, error) {
	var out bookreturn.Return
	res := r.db.WithContext(ctx).Where("return_id = ?", returnID).First(&out)
	return &out, res.Error
}

func (r *ReturnRepository) GetByReturnIDForUpdate(ctx context.Context, returnID string) (*bookreturn.Return, error) {
	var out bookreturn.Return
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("return_id = ?", returnID).
		First(&out)
	return &out, res.Error
}

func (r *ReturnRepository) GetPendingByBorrowingID(ctx context.Context, borrowingID uint64) (*bookreturn.Return, error) {
	var out bookreturn.Return
	res := r.db.WithContext(ctx).
		Where("borrowing_id = ? AND approval_status = ?", borrowingID, bookreturn.ApprovalPending).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}
