package fine

import (
	"time"

	"library-backend/internal/domain/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Condition is the book condition a fine type charges for.
type Condition string

const (
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
	ConditionDamaged Condition = "damaged"
	ConditionLost    Condition = "lost"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionFair, ConditionPoor, ConditionDamaged, ConditionLost:
		return true
	}
	return false
}

var (
	ErrNotFound        = apperr.NotFound("FINE_TYPE_NOT_FOUND", "fine type not found")
	ErrDuplicateActive = apperr.Conflict("FINE_TYPE_DUPLICATE", "an active fine type already exists for this condition")
	ErrDuplicateCode   = apperr.Conflict("FINE_TYPE_CODE_TAKEN", "fine type code already exists")
)

type FineType struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"id"`
	Code          string          `gorm:"size:64;not null;uniqueIndex:ux_fine_types_code" json:"code"`
	BookCondition Condition       `gorm:"size:16;not null;index:idx_fine_types_condition_active" json:"book_condition"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	IsActive      bool            `gorm:"not null;default:true;index:idx_fine_types_condition_active" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (FineType) TableName() string { return "fine_types" }
