package borrowing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/bookreturn"
	domain "library-backend/internal/domain/borrowing"
	"library-backend/internal/domain/calendar"
	"library-backend/internal/domain/catalog"
	"library-backend/internal/domain/reservation"
	"library-backend/internal/domain/settings"
	"library-backend/internal/domain/uow"
	"library-backend/pkg/id"

	"gorm.io/gorm"
)

// Promoter offers a freed copy to the reservation queue within the caller's tx.
type Promoter interface {
	Promote(ctx context.Context, r uow.Repos, bookID, copyID uint64) (*reservation.Reservation, error)
}

type Usecase struct {
	repo     domain.Repository
	uow      uow.UnitOfWork
	settings settings.Provider
	queue    Promoter
	policy   domain.Policy
	now      func() time.Time
}

// NewUsecase: queue may be nil when no reservation queue is wired.
func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, sp settings.Provider, queue Promoter, p domain.Policy) *Usecase {
	return &Usecase{repo: repo, uow: tx, settings: sp, queue: queue, policy: p, now: time.Now}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Create opens one pending borrowing per copy. Copies stay available until approval.
func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CreateInput) ([]BorrowingDTO, error) {
	if err := validateCopies(in.CopyIDs); err != nil {
		return nil, err
	}
	if err := actor.RequireSelfOrStaff(a, in.UserID); err != nil {
		return nil, err
	}
	now := u.now()
	if in.DueDate != nil && !in.DueDate.After(now) {
		return nil, apperr.Validationf("due_date must be in the future")
	}
	s, err := u.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if err := calendar.Require(now, s); err != nil {
		return nil, err
	}

	var created []*domain.Borrowing
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		open, err := r.Borrowings.CountOpenByUser(ctx, in.UserID)
		if err != nil {
			return err
		}
		if err := u.policy.CheckLimit(open, len(in.CopyIDs)); err != nil {
			return err
		}

		for _, copyID := range in.CopyIDs {
			c, err := r.Catalog.GetCopy(ctx, copyID)
			if err != nil {
				return notFound(err, catalog.ErrCopyNotFound)
			}
			if c.Status != catalog.CopyAvailable {
				return fmt.Errorf("%w: copy %d is %s", catalog.ErrCopyNotAvailable, copyID, c.Status)
			}
			pending, err := r.Borrowings.HasPendingForCopy(ctx, copyID)
			if err != nil {
				return err
			}
			if pending {
				return fmt.Errorf("%w: copy %d already has a pending request", catalog.ErrCopyNotAvailable, copyID)
			}

			b := &domain.Borrowing{
				BorrowingID: id.NewID32(),
				UserID:      in.UserID,
				BookID:      c.BookID,
				BookCopyID:  c.ID,
				DueDate:     utcPtr(in.DueDate),
				Status:      domain.StatusPending,
				MaxRenewals: u.policy.MaxRenewals,
			}
			if err := r.Borrowings.Create(ctx, b); err != nil {
				return err
			}
			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]BorrowingDTO, 0, len(created))
	for _, b := range created {
		out = append(out, toDTO(b, now, s.Location))
	}
	return out, nil
}

// Approve activates a pending borrowing. The copy is re-checked with a conditional
// update, so of two concurrent approvals only one takes it.
func (u *Usecase) Approve(ctx context.Context, a actor.Actor, borrowingID string) (*BorrowingDTO, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	now := u.now().UTC()

	var out *domain.Borrowing
	err := u.uow.WithinBorrowingTx(ctx, borrowingID, func(r uow.Repos, b *domain.Borrowing) error {
		if b.Status == domain.StatusActive {
			return domain.ErrAlreadyApproved
		}
		if !domain.ValidTransition(domain.ActionApprove, b.Status) {
			return fmt.Errorf("%w: cannot approve a %s borrowing", domain.ErrInvalidState, b.Status)
		}

		ok, err := r.Catalog.MarkBorrowed(ctx, b.BookCopyID, catalog.CopyAvailable, now)
		if err != nil {
			return err
		}
		if !ok {
			return catalog.ErrCopyNotAvailable
		}

		due := u.policy.DueFrom(now)
		if b.DueDate != nil && b.DueDate.After(now) {
			due = *b.DueDate
		}
		approver := a.UserID
		b.Status = domain.StatusActive
		b.BorrowedDate = &now
		b.DueDate = &due
		b.ApprovedBy = &approver
		b.ApprovedAt = &now
		if err := r.Borrowings.Save(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	slog.InfoContext(ctx, "borrowing approved", "borrowing_id", out.BorrowingID, "copy_id", out.BookCopyID, "by", a.UserID)
	dto := toDTO(out, now, u.location(ctx))
	return &dto, nil
}

func (u *Usecase) Reject(ctx context.Context, a actor.Actor, borrowingID string, in RejectInput) (*BorrowingDTO, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	var out *domain.Borrowing
	err := u.uow.WithinBorrowingTx(ctx, borrowingID, func(r uow.Repos, b *domain.Borrowing) error {
		if !domain.ValidTransition(domain.ActionReject, b.Status) {
			return fmt.Errorf("%w: cannot reject a %s borrowing", domain.ErrInvalidState, b.Status)
		}
		reason := in.Reason
		b.Status = domain.StatusRejected
		b.RejectionReason = &reason
		if err := r.Borrowings.Save(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	dto := toDTO(out, u.now(), u.location(ctx))
	return &dto, nil
}

// Renew extends an active borrowing by one loan period from its current due date.
func (u *Usecase) Renew(ctx context.Context, a actor.Actor, borrowingID string) (*BorrowingDTO, error) {
	now := u.now()
	s, err := u.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if err := calendar.Require(now, s); err != nil {
		return nil, err
	}

	var out *domain.Borrowing
	err = u.uow.WithinBorrowingTx(ctx, borrowingID, func(r uow.Repos, b *domain.Borrowing) error {
		if err := actor.RequireSelfOrStaff(a, b.UserID); err != nil {
			return err
		}
		if !domain.ValidTransition(domain.ActionRenew, b.Status) {
			return fmt.Errorf("%w: cannot renew a %s borrowing", domain.ErrInvalidState, b.Status)
		}
		if b.RenewalCount >= b.MaxRenewals {
			return domain.ErrRenewalLimitReached
		}
		// the copy is already back on the shelf once a return awaits sign-off
		if _, err := r.Returns.GetPendingByBorrowingID(ctx, b.ID); err == nil {
			return bookreturn.ErrReturnPending
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		base := now.UTC()
		if b.DueDate != nil {
			base = *b.DueDate
		}
		due := u.policy.DueFrom(base)
		b.DueDate = &due
		b.RenewalCount++
		if !due.Before(domain.StartOfDay(now, s.Location)) {
			b.OverdueSince = nil
		}
		if err := r.Borrowings.Save(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	dto := toDTO(out, now, s.Location)
	return &dto, nil
}

// Cancel withdraws a request that has not been approved yet.
func (u *Usecase) Cancel(ctx context.Context, a actor.Actor, borrowingID string) (*BorrowingDTO, error) {
	var out *domain.Borrowing
	err := u.uow.WithinBorrowingTx(ctx, borrowingID, func(r uow.Repos, b *domain.Borrowing) error {
		if err := actor.RequireSelfOrStaff(a, b.UserID); err != nil {
			return err
		}
		if !domain.ValidTransition(domain.ActionCancel, b.Status) {
			return fmt.Errorf("%w: cannot cancel a %s borrowing", domain.ErrInvalidState, b.Status)
		}
		by := a.UserID
		b.Status = domain.StatusCancelled
		b.CancelledBy = &by
		if err := r.Borrowings.Save(ctx, b); err != nil {
			return err
		}
		out = b

		// the request no longer blocks the copy; pass it to whoever is waiting
		if u.queue == nil {
			return nil
		}
		c, err := r.Catalog.GetCopy(ctx, b.BookCopyID)
		if err != nil {
			return err
		}
		if c.Status != catalog.CopyAvailable {
			return nil
		}
		_, err = u.queue.Promote(ctx, r, c.BookID, c.ID)
		return err
	})
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	dto := toDTO(out, u.now(), u.location(ctx))
	return &dto, nil
}

func (u *Usecase) Get(ctx context.Context, a actor.Actor, borrowingID string) (*BorrowingDTO, error) {
	b, err := u.repo.GetByBorrowingID(ctx, borrowingID)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	if err := actor.RequireSelfOrStaff(a, b.UserID); err != nil {
		return nil, err
	}
	dto := toDTO(b, u.now(), u.location(ctx))
	return &dto, nil
}

func (u *Usecase) ListByUser(ctx context.Context, a actor.Actor, userID string) ([]BorrowingDTO, error) {
	if err := actor.RequireSelfOrStaff(a, userID); err != nil {
		return nil, err
	}
	list, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now, loc := u.now(), u.location(ctx)
	out := make([]BorrowingDTO, 0, len(list))
	for i := range list {
		out = append(out, toDTO(&list[i], now, loc))
	}
	return out, nil
}

// SweepOverdue materializes the overdue flag for reporting. Running it twice on the
// same day changes nothing the second time.
func (u *Usecase) SweepOverdue(ctx context.Context) (SweepResult, error) {
	now := u.now()
	today := domain.StartOfDay(now, u.location(ctx))

	var res SweepResult
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		cleared, err := r.Borrowings.ClearOverdue(ctx, today)
		if err != nil {
			return err
		}
		flagged, err := r.Borrowings.FlagOverdue(ctx, today, now.UTC())
		if err != nil {
			return err
		}
		res = SweepResult{Flagged: flagged, Cleared: cleared}
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}
	if res.Flagged > 0 || res.Cleared > 0 {
		slog.InfoContext(ctx, "overdue sweep", "flagged", res.Flagged, "cleared", res.Cleared)
	}
	return res, nil
}

func (u *Usecase) location(ctx context.Context) *time.Location {
	s, err := u.settings.Current(ctx)
	if err != nil || s.Location == nil {
		return calendar.DefaultLocation
	}
	return s.Location
}

func validateCopies(ids []uint64) error {
	if len(ids) == 0 || len(ids) > domain.MaxCopiesPerRequest {
		return apperr.Validationf("copy_ids must hold between 1 and %d copies", domain.MaxCopiesPerRequest)
	}
	seen := make(map[uint64]struct{}, len(ids))
	for _, c := range ids {
		if c == 0 {
			return apperr.Validationf("copy_ids must be positive")
		}
		if _, dup := seen[c]; dup {
			return apperr.Validationf("copy %d listed twice", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
