package reservation

import (
	"time"

	domain "library-backend/internal/domain/reservation"
)

type EnqueueInput struct {
	UserID string `json:"user_id" validate:"required,hex32"`
	BookID uint64 `json:"book_id" validate:"required,gt=0"`
}

type ReservationDTO struct {
	ReservationID string     `json:"reservation_id"`
	UserID        string     `json:"user_id,omitempty"`
	BookID        uint64     `json:"book_id"`
	BookCopyID    *uint64    `json:"book_copy_id,omitempty"`
	Status        string     `json:"status"`
	QueuePosition int        `json:"queue_position"`
	NotifiedAt    *time.Time `json:"notified_at,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	FulfilledAt   *time.Time `json:"fulfilled_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type FulfillDTO struct {
	Reservation ReservationDTO `json:"reservation"`
	BorrowingID string         `json:"borrowing_id"`
	DueDate     time.Time      `json:"due_date"`
}

func toDTO(r *domain.Reservation) ReservationDTO {
	return ReservationDTO{
		ReservationID: r.ReservationID,
		UserID:        r.UserID,
		BookID:        r.BookID,
		BookCopyID:    r.BookCopyID,
		Status:        string(r.Status),
		QueuePosition: r.QueuePosition,
		NotifiedAt:    r.NotifiedAt,
		ExpiryDate:    r.ExpiryDate,
		FulfilledAt:   r.FulfilledAt,
		CancelledAt:   r.CancelledAt,
		CreatedAt:     r.CreatedAt,
	}
}
