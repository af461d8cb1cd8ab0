package gormrepo

import (
	"context"
	"time"

	"library-backend/internal/domain/borrowing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BorrowingRepository struct{ db *gorm.DB }

func NewBorrowingRepository(db *gorm.DB) *BorrowingRepository { return &BorrowingRepository{db: db} }

func (r *BorrowingRepository) Create(ctx context.Context, b *borrowing.Borrowing) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BorrowingRepository) Save(ctx context.Context, b *borrowing.Borrowing) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BorrowingRepository) GetByBorrowingID(ctx context.Context, borrowingID string) (*borrowing.Borrowing, error) {
	var out borrowing.Borrowing
	res := r.db.WithContext(ctx).Where("borrowing_id = ?", borrowingID).First(&out)
	return &out, res.Error
}

func (r *BorrowingRepository) GetByBorrowingIDForUpdate(ctx context.Context, borrowingID string) (*borrowing.Borrowing, error) {
	var out borrowing.Borrowing
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("borrowing_id = ?", borrowingID).
		First(&out)
	return &out, res.Error
}

func (r *BorrowingRepository) GetByID(ctx context.Context, id uint64) (*borrowing.Borrowing, error) {
	var out borrowing.Borrowing
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *BorrowingRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*borrowing.Borrowing, error) {
	var out borrowing.Borrowing
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *BorrowingRepository) ListByUser(ctx context.Context, userID string) ([]borrowing.Borrowing, error) {
	var out []borrowing.Borrowing
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *BorrowingRepository) CountOpenByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&borrowing.Borrowing{}).
		Where("user_id = ? AND status IN ?", userID, []borrowing.Status{borrowing.StatusPending, borrowing.StatusActive}).
		Count(&n)
	return n, res.Error
}

func (r *BorrowingRepository) HasPendingForCopy(ctx context.Context, copyID uint64) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&borrowing.Borrowing{}).
		Where("book_copy_id = ? AND status = ?", copyID, borrowing.StatusPending).
		Count(&n)
	return n > 0, res.Error
}

// FlagOverdue stamps active borrowings due before `before` that are not flagged yet.
func (r *BorrowingRepository) FlagOverdue(ctx context.Context, before, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&borrowing.Borrowing{}).
		Where("status = ? AND due_date < ? AND overdue_since IS NULL", borrowing.StatusActive, before.UTC()).
		Update("overdue_since", at.UTC())
	return res.RowsAffected, res.Error
}

// ClearOverdue drops stale flags (renewed or closed borrowings).
func (r *BorrowingRepository) ClearOverdue(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&borrowing.Borrowing{}).
		Where("overdue_since IS NOT NULL AND (status <> ? OR due_date >= ?)", borrowing.StatusActive, before.UTC()).
		Update("overdue_since", gorm.Expr("NULL"))
	return res.RowsAffected, res.Error
}
