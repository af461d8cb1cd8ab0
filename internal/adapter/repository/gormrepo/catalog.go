package gormrepo

import (
	"context"
	"errors"
	"time"

	"library-backend/internal/domain/catalog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) *CatalogRepository { return &CatalogRepository{db: db} }

func (r *CatalogRepository) CreateBook(ctx context.Context, b *catalog.Book) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return catalog.ErrDuplicateISBN
	}
	return err
}

func (r *CatalogRepository) GetBook(ctx context.Context, id uint64) (*catalog.Book, error) {
	var out catalog.Book
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *CatalogRepository) GetBookForUpdate(ctx context.Context, id uint64) (*catalog.Book, error) {
	var out catalog.Book
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *CatalogRepository) CreateCopy(ctx context.Context, c *catalog.BookCopy) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return catalog.ErrDuplicateBarcode
	}
	return err
}

func (r *CatalogRepository) GetCopy(ctx context.Context, id uint64) (*catalog.BookCopy, error) {
	var out catalog.BookCopy
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *CatalogRepository) ListCopiesByBook(ctx context.Context, bookID uint64) ([]catalog.BookCopy, error) {
	var out []catalog.BookCopy
	res := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *CatalogRepository) CountCopiesByStatus(ctx context.Context, bookID uint64, status catalog.CopyStatus) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&catalog.BookCopy{}).
		Where("book_id = ? AND status = ?", bookID, status).
		Count(&n)
	return n, res.Error
}

// MarkBorrowed moves a copy from `from` to borrowed and bumps its counters.
// UPDATE ... WHERE status = from, so only one concurrent caller wins.
func (r *CatalogRepository) MarkBorrowed(ctx context.Context, copyID uint64, from catalog.CopyStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&catalog.BookCopy{}).
		Where("id = ? AND status = ?", copyID, from).
		Updates(map[string]any{
			"status":           catalog.CopyBorrowed,
			"times_borrowed":   gorm.Expr("times_borrowed + 1"),
			"last_borrowed_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *CatalogRepository) TransitionCopy(ctx context.Context, copyID uint64, from, to catalog.CopyStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&catalog.BookCopy{}).
		Where("id = ? AND status = ?", copyID, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *CatalogRepository) UpdateCondition(ctx context.Context, copyID uint64, c catalog.Condition) error {
	return r.db.WithContext(ctx).Model(&catalog.BookCopy{}).
		Where("id = ?", copyID).
		Update("condition", c).Error
}
