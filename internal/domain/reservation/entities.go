package reservation

import (
	"time"

	"library-backend/internal/domain/apperr"

	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusReady     Status = "ready"
	StatusFulfilled Status = "fulfilled"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound        = apperr.NotFound("RESERVATION_NOT_FOUND", "reservation not found")
	ErrInvalidState    = apperr.Conflict("INVALID_RESERVATION_STATE", "invalid reservation state")
	ErrAlreadyReserved = apperr.Conflict("ALREADY_RESERVED", "user already holds a reservation for this book")
	ErrExpired         = apperr.Conflict("RESERVATION_EXPIRED", "reservation pickup window has passed")
)

// Reservation: queue_position is unique and increasing within the pending cohort of a book.
type Reservation struct {
	ID            uint64         `gorm:"primaryKey;column:id" json:"-"`
	ReservationID string         `gorm:"size:32;not null;uniqueIndex:ux_reservations_reservation_id" json:"reservation_id"`
	UserID        string         `gorm:"size:32;not null;index:idx_reservations_user_book" json:"user_id"`
	BookID        uint64         `gorm:"not null;index:idx_reservations_book_status;index:idx_reservations_user_book" json:"book_id"`
	BookCopyID    *uint64        `json:"book_copy_id,omitempty"`
	Status        Status         `gorm:"size:16;not null;default:'pending';index:idx_reservations_book_status" json:"status"`
	QueuePosition int            `gorm:"not null" json:"queue_position"`
	NotifiedAt    *time.Time     `json:"notified_at,omitempty"`
	ExpiryDate    *time.Time     `gorm:"index" json:"expiry_date,omitempty"`
	FulfilledAt   *time.Time     `json:"fulfilled_at,omitempty"`
	CancelledAt   *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Reservation) TableName() string { return "reservations" }

func (s Status) IsTerminal() bool {
	return s == StatusFulfilled || s == StatusExpired || s == StatusCancelled
}
