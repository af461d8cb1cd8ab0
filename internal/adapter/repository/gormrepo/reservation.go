package gormrepo

import (
	"context"
	"time"

	"library-backend/internal/domain/reservation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository struct{ db *gorm.DB }

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *ReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *ReservationRepository) GetByReservationID(ctx context.Context, reservationID string) (*reservation.Reservation, error) {
	var out reservation.Reservation
	res := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&out)
	return &out, res.Error
}

func (r *ReservationRepository) GetByReservationIDForUpdate(ctx context.Context, reservationID string) (*reservation.Reservation, error) {
	var out reservation.Reservation
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reservation_id = ?", reservationID).
		First(&out)
	return &out, res.Error
}

func (r *ReservationRepository) LockPending(ctx context.Context, bookID uint64) ([]reservation.Reservation, error) {
	var out []reservation.Reservation
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("book_id = ? AND status = ?", bookID, reservation.StatusPending).
		Order("queue_position ASC").
		Find(&out)
	return out, res.Error
}

func (r *ReservationRepository) ExistsOpenForUser(ctx context.Context, userID string, bookID uint64) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&reservation.Reservation{}).
		Where("user_id = ? AND book_id = ? AND status IN ?", userID, bookID,
			[]reservation.Status{reservation.StatusPending, reservation.StatusReady}).
		Count(&n)
	return n > 0, res.Error
}

func (r *ReservationRepository) ListByBook(ctx context.Context, bookID uint64) ([]reservation.Reservation, error) {
	var out []reservation.Reservation
	res := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("queue_position ASC, id ASC").
		Find(&out)
	return out, res.Error
}

// ListReadyExpired returns ready reservations whose pickup window closed before now.
func (r *ReservationRepository) ListReadyExpired(ctx context.Context, now time.Time) ([]reservation.Reservation, error) {
	var out []reservation.Reservation
	res := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date < ?", reservation.StatusReady, now.UTC()).
		Order("expiry_date ASC").
		Find(&out)
	return out, res.Error
}
