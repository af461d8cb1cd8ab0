package bookreturn

import (
	"time"

	"library-backend/internal/domain/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Condition string

const (
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionDamaged Condition = "damaged"
	ConditionLost    Condition = "lost"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionGood, ConditionFair, ConditionDamaged, ConditionLost:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

var (
	ErrNotFound           = apperr.NotFound("RETURN_NOT_FOUND", "return not found")
	ErrInvalidState       = apperr.Conflict("INVALID_RETURN_STATE", "invalid return state")
	ErrReturnPending      = apperr.Conflict("RETURN_PENDING_APPROVAL", "a return for this borrowing is awaiting approval")
	ErrNoFine             = apperr.Conflict("NO_FINE", "return carries no fine")
	ErrFineAlreadySettled = apperr.Conflict("FINE_ALREADY_SETTLED", "fine already settled the other way")
)

// Return is immutable after creation except for the fine and approval fields.
type Return struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	ReturnID        string          `gorm:"size:32;not null;uniqueIndex:ux_returns_return_id" json:"return_id"`
	BorrowingID     uint64          `gorm:"not null;index:idx_returns_borrowing_approval" json:"-"`
	ReturnedBy      string          `gorm:"size:32;not null" json:"returned_by"`
	ProcessedBy     string          `gorm:"size:32;not null" json:"processed_by"`
	ReturnedDate    time.Time       `gorm:"not null" json:"returned_date"`
	ReturnCondition Condition       `gorm:"size:16;not null" json:"return_condition"`
	FineAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"fine_amount"`
	FinePaid        bool            `gorm:"not null;default:false" json:"fine_paid"`
	FineWaived      bool            `gorm:"not null;default:false" json:"fine_waived"`
	FineSettledAt   *time.Time      `json:"fine_settled_at,omitempty"`
	ApprovalStatus  ApprovalStatus  `gorm:"size:16;not null;default:'pending';index:idx_returns_borrowing_approval" json:"approval_status"`
	ApprovedBy      *string         `gorm:"size:32" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason *string         `gorm:"type:text" json:"rejection_reason,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Return) TableName() string { return "returns" }

func (r *Return) HasFine() bool { return r.FineAmount.IsPositive() }
