package reservation

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	Save(ctx context.Context, r *Reservation) error
	GetByReservationID(ctx context.Context, reservationID string) (*Reservation, error)
	GetByReservationIDForUpdate(ctx context.Context, reservationID string) (*Reservation, error)

	// LockPending locks the pending cohort of a book and returns it ordered by queue position.
	LockPending(ctx context.Context, bookID uint64) ([]Reservation, error)
	ExistsOpenForUser(ctx context.Context, userID string, bookID uint64) (bool, error)
	ListByBook(ctx context.Context, bookID uint64) ([]Reservation, error)
	ListReadyExpired(ctx context.Context, now time.Time) ([]Reservation, error)
}
