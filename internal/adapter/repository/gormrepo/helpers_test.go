package gormrepo

import (
	"context"
	"testing"
	"time"

	"library-backend/internal/domain/borrowing"
	"library-backend/internal/domain/catalog"
	"library-backend/pkg/id"

	"gorm.io/gorm"
)

func seedCopy(t *testing.T, db *gorm.DB, barcode string, status catalog.CopyStatus) (*catalog.Book, *catalog.BookCopy) {
	t.Helper()
	ctx := context.Background()
	repo := NewCatalogRepository(db)
	b := &catalog.Book{ISBN: "isbn-" + barcode, Title: "Dune", Author: "Herbert"}
	if err := repo.CreateBook(ctx, b); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	c := &catalog.BookCopy{BookID: b.ID, Barcode: barcode, Condition: catalog.ConditionGood, Status: status}
	if err := repo.CreateCopy(ctx, c); err != nil {
		t.Fatalf("CreateCopy: %v", err)
	}
	return b, c
}

func makeBorrowing(userID string, bookID, copyID uint64, status borrowing.Status, due *time.Time) *borrowing.Borrowing {
	return &borrowing.Borrowing{
		BorrowingID: id.NewID32(),
		UserID:      userID,
		BookID:      bookID,
		BookCopyID:  copyID,
		Status:      status,
		DueDate:     due,
		MaxRenewals: 2,
	}
}

func ptr[T any](v T) *T { return &v }
