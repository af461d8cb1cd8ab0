package returns

import (
	"time"

	"library-backend/internal/domain/bookreturn"

	"github.com/shopspring/decimal"
)

type ProcessReturnInput struct {
	BorrowingID string `json:"borrowing_id" validate:"required,hex32"`
	Condition   string `json:"return_condition" validate:"required,oneof=good fair damaged lost"`
	Notes       string `json:"notes" validate:"max=1000"`
}

type RejectInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ReturnDTO struct {
	ReturnID        string          `json:"return_id"`
	BorrowingID     string          `json:"borrowing_id"`
	ReturnedBy      string          `json:"returned_by"`
	ProcessedBy     string          `json:"processed_by"`
	ReturnedDate    time.Time       `json:"returned_date"`
	ReturnCondition string          `json:"return_condition"`
	FineAmount      decimal.Decimal `json:"fine_amount"`
	FinePaid        bool            `json:"fine_paid"`
	FineWaived      bool            `json:"fine_waived"`
	ApprovalStatus  string          `json:"approval_status"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	BorrowingStatus string          `json:"borrowing_status"`
}

func toDTO(r *bookreturn.Return, borrowingID, borrowingStatus string) ReturnDTO {
	return ReturnDTO{
		ReturnID:        r.ReturnID,
		BorrowingID:     borrowingID,
		ReturnedBy:      r.ReturnedBy,
		ProcessedBy:     r.ProcessedBy,
		ReturnedDate:    r.ReturnedDate,
		ReturnCondition: string(r.ReturnCondition),
		FineAmount:      r.FineAmount,
		FinePaid:        r.FinePaid,
		FineWaived:      r.FineWaived,
		ApprovalStatus:  string(r.ApprovalStatus),
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		RejectionReason: r.RejectionReason,
		BorrowingStatus: borrowingStatus,
	}
}
