package borrowing

import (
	"fmt"
	"time"

	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/catalog"

	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusReturned  Status = "returned"
	StatusOverdue   Status = "overdue"
	StatusLost      Status = "lost"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

// MaxCopiesPerRequest bounds a single borrow request.
const MaxCopiesPerRequest = 5

var (
	ErrNotFound            = apperr.NotFound("BORROWING_NOT_FOUND", "borrowing not found")
	ErrInvalidState        = apperr.Conflict("INVALID_BORROWING_STATE", "invalid borrowing state")
	ErrRenewalLimitReached = apperr.Conflict("RENEWAL_LIMIT_REACHED", "renewal limit reached")
	ErrTooManyActive       = apperr.Policy("TOO_MANY_ACTIVE_BORROWINGS", "too many active borrowings")
	ErrAlreadyApproved     = fmt.Errorf("borrowing already approved: %w", catalog.ErrCopyNotAvailable)
)

type Borrowing struct {
	ID              uint64         `gorm:"primaryKey;column:id" json:"-"`
	BorrowingID     string         `gorm:"size:32;not null;uniqueIndex:ux_borrowings_borrowing_id" json:"borrowing_id"`
	UserID          string         `gorm:"size:32;not null;index:idx_borrowings_user_status" json:"user_id"`
	BookID          uint64         `gorm:"not null;index" json:"book_id"`
	BookCopyID      uint64         `gorm:"not null;index:idx_borrowings_copy_status" json:"book_copy_id"`
	BorrowedDate    *time.Time     `json:"borrowed_date,omitempty"`
	DueDate         *time.Time     `json:"due_date,omitempty"`
	ReturnedDate    *time.Time     `json:"returned_date,omitempty"`
	Status          Status         `gorm:"size:16;not null;default:'pending';index:idx_borrowings_user_status;index:idx_borrowings_copy_status" json:"status"`
	RenewalCount    int            `gorm:"not null;default:0" json:"renewal_count"`
	MaxRenewals     int            `gorm:"not null;default:2" json:"max_renewals"`
	ReturnCondition *string        `gorm:"size:16" json:"return_condition,omitempty"`
	ApprovedBy      *string        `gorm:"size:32" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	CancelledBy     *string        `gorm:"size:32" json:"cancelled_by,omitempty"`
	RejectionReason *string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	OverdueSince    *time.Time     `gorm:"index" json:"overdue_since,omitempty"`
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Borrowing) TableName() string { return "borrowings" }

// IsOverdue is the authoritative overdue check; OverdueSince is only a materialized copy of it.
func (b *Borrowing) IsOverdue(now time.Time, loc *time.Location) bool {
	if b.Status != StatusActive || b.DueDate == nil {
		return false
	}
	return b.DueDate.Before(StartOfDay(now, loc))
}

// StartOfDay returns midnight of now's civil date in loc.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := now.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
