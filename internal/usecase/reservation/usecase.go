package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/borrowing"
	"library-backend/internal/domain/calendar"
	"library-backend/internal/domain/catalog"
	domain "library-backend/internal/domain/reservation"
	"library-backend/internal/domain/settings"
	"library-backend/internal/domain/uow"
	"library-backend/pkg/id"

	"gorm.io/gorm"
)

// DefaultPickupWindow is how long a ready reservation holds its copy.
const DefaultPickupWindow = 48 * time.Hour

type Policy struct {
	PickupWindow time.Duration
	Borrowing    borrowing.Policy
}

type Usecase struct {
	repo     domain.Repository
	uow      uow.UnitOfWork
	settings settings.Provider
	policy   Policy
	now      func() time.Time
}

func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, sp settings.Provider, p Policy) *Usecase {
	if p.PickupWindow <= 0 {
		p.PickupWindow = DefaultPickupWindow
	}
	return &Usecase{repo: repo, uow: tx, settings: sp, policy: p, now: time.Now}
}

// WithClock swaps the time source, mostly for tests and sweeps.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

func (u *Usecase) Enqueue(ctx context.Context, a actor.Actor, in EnqueueInput) (*ReservationDTO, error) {
	if err := actor.RequireSelfOrStaff(a, in.UserID); err != nil {
		return nil, err
	}
	var out *domain.Reservation
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// the book row lock covers an empty queue too, where LockPending has no rows to hold
		if _, err := r.Catalog.GetBookForUpdate(ctx, in.BookID); err != nil {
			return notFound(err, catalog.ErrBookNotFound)
		}
		exists, err := r.Reservations.ExistsOpenForUser(ctx, in.UserID, in.BookID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyReserved
		}

		pending, err := r.Reservations.LockPending(ctx, in.BookID)
		if err != nil {
			return err
		}
		res := &domain.Reservation{
			ReservationID: id.NewID32(),
			UserID:        in.UserID,
			BookID:        in.BookID,
			Status:        domain.StatusPending,
			QueuePosition: domain.NextPosition(pending),
		}
		if err := r.Reservations.Create(ctx, res); err != nil {
			return err
		}
		out = res

		promoted, err := u.offerShelfCopy(ctx, r, in.BookID)
		if err != nil {
			return err
		}
		if promoted != nil && promoted.ReservationID == res.ReservationID {
			out = promoted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toDTO(out)
	return &dto, nil
}

// offerShelfCopy hands a copy sitting on the shelf to the queue head. Copies with a
// pending borrow request are left alone; cancelling that request promotes instead.
func (u *Usecase) offerShelfCopy(ctx context.Context, r uow.Repos, bookID uint64) (*domain.Reservation, error) {
	copies, err := r.Catalog.ListCopiesByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	for _, c := range copies {
		if c.Status != catalog.CopyAvailable {
			continue
		}
		requested, err := r.Borrowings.HasPendingForCopy(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if requested {
			continue
		}
		return u.Promote(ctx, r, bookID, c.ID)
	}
	return nil, nil
}

// Promote hands copyID to the head of bookID's queue inside the caller's tx.
// The copy must already be available. It returns nil when nobody is waiting.
func (u *Usecase) Promote(ctx context.Context, r uow.Repos, bookID, copyID uint64) (*domain.Reservation, error) {
	pending, err := r.Reservations.LockPending(ctx, bookID)
	if err != nil {
		return nil, err
	}
	head := domain.Head(pending)
	if head == nil {
		return nil, nil
	}

	ok, err := r.Catalog.TransitionCopy(ctx, copyID, catalog.CopyAvailable, catalog.CopyReserved)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.WarnContext(ctx, "promotion skipped, copy no longer available",
			"book_id", bookID, "copy_id", copyID, "reservation_id", head.ReservationID)
		return nil, nil
	}

	now := u.now().UTC()
	expiry := now.Add(u.policy.PickupWindow)
	head.Status = domain.StatusReady
	head.BookCopyID = &copyID
	head.NotifiedAt = &now
	head.ExpiryDate = &expiry
	if err := r.Reservations.Save(ctx, head); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "reservation ready",
		"reservation_id", head.ReservationID, "user_id", head.UserID, "copy_id", copyID, "expires", expiry)
	return head, nil
}

func (u *Usecase) Fulfill(ctx context.Context, a actor.Actor, reservationID string) (*FulfillDTO, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	now := u.now()
	s, err := u.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if err := calendar.Require(now, s); err != nil {
		return nil, err
	}
	now = now.UTC()

	var dto *FulfillDTO
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		res, err := r.Reservations.GetByReservationIDForUpdate(ctx, reservationID)
		if err != nil {
			return notFound(err, domain.ErrNotFound)
		}
		if res.Status != domain.StatusReady || res.BookCopyID == nil {
			return fmt.Errorf("%w: cannot fulfill a %s reservation", domain.ErrInvalidState, res.Status)
		}
		if res.ExpiryDate != nil && now.After(*res.ExpiryDate) {
			return domain.ErrExpired
		}

		open, err := r.Borrowings.CountOpenByUser(ctx, res.UserID)
		if err != nil {
			return err
		}
		if err := u.policy.Borrowing.CheckLimit(open, 1); err != nil {
			return err
		}

		copyID := *res.BookCopyID
		ok, err := r.Catalog.MarkBorrowed(ctx, copyID, catalog.CopyReserved, now)
		if err != nil {
			return err
		}
		if !ok {
			return catalog.ErrCopyNotAvailable
		}

		due := u.policy.Borrowing.DueFrom(now)
		approver := a.UserID
		b := &borrowing.Borrowing{
			BorrowingID:  id.NewID32(),
			UserID:       res.UserID,
			BookID:       res.BookID,
			BookCopyID:   copyID,
			BorrowedDate: &now,
			DueDate:      &due,
			Status:       borrowing.StatusActive,
			MaxRenewals:  u.policy.Borrowing.MaxRenewals,
			ApprovedBy:   &approver,
			ApprovedAt:   &now,
			Notes:        "fulfilled reservation " + res.ReservationID,
		}
		if err := r.Borrowings.Create(ctx, b); err != nil {
			return err
		}

		res.Status = domain.StatusFulfilled
		res.FulfilledAt = &now
		if err := r.Reservations.Save(ctx, res); err != nil {
			return err
		}
		dto = &FulfillDTO{Reservation: toDTO(res), BorrowingID: b.BorrowingID, DueDate: due}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Cancel(ctx context.Context, a actor.Actor, reservationID string) (*ReservationDTO, error) {
	now := u.now().UTC()
	var out *domain.Reservation
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		res, err := r.Reservations.GetByReservationIDForUpdate(ctx, reservationID)
		if err != nil {
			return notFound(err, domain.ErrNotFound)
		}
		if err := actor.RequireSelfOrStaff(a, res.UserID); err != nil {
			return err
		}
		if res.Status.IsTerminal() {
			return fmt.Errorf("%w: reservation already %s", domain.ErrInvalidState, res.Status)
		}
		wasReady := res.Status == domain.StatusReady

		res.Status = domain.StatusCancelled
		res.CancelledAt = &now
		if err := r.Reservations.Save(ctx, res); err != nil {
			return err
		}
		out = res
		if wasReady && res.BookCopyID != nil {
			return u.release(ctx, r, res.BookID, *res.BookCopyID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toDTO(out)
	return &dto, nil
}

// ExpireReady expires every ready reservation past its pickup window and passes the
// held copy on. Rows already handled by a previous run are skipped.
func (u *Usecase) ExpireReady(ctx context.Context) (int, error) {
	now := u.now().UTC()
	due, err := u.repo.ListReadyExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, candidate := range due {
		done := false
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			res, err := r.Reservations.GetByReservationIDForUpdate(ctx, candidate.ReservationID)
			if err != nil {
				return err
			}
			if res.Status != domain.StatusReady || res.ExpiryDate == nil || !res.ExpiryDate.Before(now) {
				return nil
			}
			res.Status = domain.StatusExpired
			if err := r.Reservations.Save(ctx, res); err != nil {
				return err
			}
			done = true
			if res.BookCopyID == nil {
				return nil
			}
			return u.release(ctx, r, res.BookID, *res.BookCopyID)
		})
		if err != nil {
			return expired, fmt.Errorf("expire reservation %s: %w", candidate.ReservationID, err)
		}
		// counted only once the tx committed
		if done {
			expired++
		}
	}
	if expired > 0 {
		slog.InfoContext(ctx, "reservations expired", "count", expired)
	}
	return expired, nil
}

func (u *Usecase) Get(ctx context.Context, a actor.Actor, reservationID string) (*ReservationDTO, error) {
	res, err := u.repo.GetByReservationID(ctx, reservationID)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	if err := actor.RequireSelfOrStaff(a, res.UserID); err != nil {
		return nil, err
	}
	dto := toDTO(res)
	return &dto, nil
}

// ListByBook returns the queue of a book ordered by position. Members only see
// their own user id; other entries keep their position and status.
func (u *Usecase) ListByBook(ctx context.Context, a actor.Actor, bookID uint64) ([]ReservationDTO, error) {
	list, err := u.repo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	out := make([]ReservationDTO, 0, len(list))
	for i := range list {
		dto := toDTO(&list[i])
		if !a.CanActFor(dto.UserID) {
			dto.UserID = ""
		}
		out = append(out, dto)
	}
	return out, nil
}

// release puts a held copy back on the shelf and offers it to the next in line.
func (u *Usecase) release(ctx context.Context, r uow.Repos, bookID, copyID uint64) error {
	ok, err := r.Catalog.TransitionCopy(ctx, copyID, catalog.CopyReserved, catalog.CopyAvailable)
	if err != nil {
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "held copy was not reserved", "copy_id", copyID)
		return nil
	}
	_, err = u.Promote(ctx, r, bookID, copyID)
	return err
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
