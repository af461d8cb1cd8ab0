package catalog

import (
	"time"

	"library-backend/internal/domain/apperr"

	"gorm.io/gorm"
)

type CopyStatus string

const (
	CopyAvailable   CopyStatus = "available"
	CopyBorrowed    CopyStatus = "borrowed"
	CopyReserved    CopyStatus = "reserved"
	CopyLost        CopyStatus = "lost"
	CopyMaintenance CopyStatus = "maintenance"
	CopyRetired     CopyStatus = "retired"
)

type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
	ConditionDamaged Condition = "damaged"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged:
		return true
	}
	return false
}

var (
	ErrBookNotFound     = apperr.NotFound("BOOK_NOT_FOUND", "book not found")
	ErrCopyNotFound     = apperr.NotFound("COPY_NOT_FOUND", "book copy not found")
	ErrCopyNotAvailable = apperr.Conflict("COPY_NOT_AVAILABLE", "book copy not available")
	ErrDuplicateBarcode = apperr.Conflict("DUPLICATE_BARCODE", "barcode already registered")
	ErrDuplicateISBN    = apperr.Conflict("DUPLICATE_ISBN", "isbn already registered")
)

type Book struct {
	ID        uint64         `gorm:"primaryKey;column:id" json:"id"`
	ISBN      string         `gorm:"size:20;uniqueIndex:ux_books_isbn" json:"isbn"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Author    string         `gorm:"size:255" json:"author"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string { return "books" }

// BookCopy is never hard-deleted while borrowings reference it.
type BookCopy struct {
	ID             uint64         `gorm:"primaryKey;column:id" json:"id"`
	BookID         uint64         `gorm:"not null;index:idx_book_copies_book_status" json:"book_id"`
	Barcode        string         `gorm:"size:64;not null;uniqueIndex:ux_book_copies_barcode" json:"barcode"`
	Condition      Condition      `gorm:"size:16;not null;default:'good'" json:"condition"`
	Status         CopyStatus     `gorm:"size:16;not null;default:'available';index:idx_book_copies_book_status" json:"status"`
	TimesBorrowed  int            `gorm:"not null;default:0" json:"times_borrowed"`
	LastBorrowedAt *time.Time     `json:"last_borrowed_at,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BookCopy) TableName() string { return "book_copies" }
