package borrowing

import (
	"time"

	domain "library-backend/internal/domain/borrowing"
)

type CreateInput struct {
	UserID  string     `json:"user_id" validate:"required,hex32"`
	CopyIDs []uint64   `json:"copy_ids" validate:"required,min=1,max=5,unique,dive,gt=0"`
	DueDate *time.Time `json:"due_date"`
}

type RejectInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type BorrowingDTO struct {
	BorrowingID     string     `json:"borrowing_id"`
	UserID          string     `json:"user_id"`
	BookID          uint64     `json:"book_id"`
	BookCopyID      uint64     `json:"book_copy_id"`
	Status          string     `json:"status"`
	Overdue         bool       `json:"overdue"`
	BorrowedDate    *time.Time `json:"borrowed_date,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	ReturnedDate    *time.Time `json:"returned_date,omitempty"`
	RenewalCount    int        `json:"renewal_count"`
	MaxRenewals     int        `json:"max_renewals"`
	ReturnCondition *string    `json:"return_condition,omitempty"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// SweepResult counts rows touched by one overdue sweep.
type SweepResult struct {
	Flagged int64 `json:"flagged"`
	Cleared int64 `json:"cleared"`
}

func toDTO(b *domain.Borrowing, now time.Time, loc *time.Location) BorrowingDTO {
	return BorrowingDTO{
		BorrowingID:     b.BorrowingID,
		UserID:          b.UserID,
		BookID:          b.BookID,
		BookCopyID:      b.BookCopyID,
		Status:          string(b.Status),
		Overdue:         b.IsOverdue(now, loc),
		BorrowedDate:    b.BorrowedDate,
		DueDate:         b.DueDate,
		ReturnedDate:    b.ReturnedDate,
		RenewalCount:    b.RenewalCount,
		MaxRenewals:     b.MaxRenewals,
		ReturnCondition: b.ReturnCondition,
		ApprovedBy:      b.ApprovedBy,
		ApprovedAt:      b.ApprovedAt,
		RejectionReason: b.RejectionReason,
		CreatedAt:       b.CreatedAt,
	}
}
