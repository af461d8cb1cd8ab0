package returns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/bookreturn"
	"library-backend/internal/domain/borrowing"
	"library-backend/internal/domain/calendar"
	"library-backend/internal/domain/catalog"
	"library-backend/internal/domain/fine"
	"library-backend/internal/domain/reservation"
	"library-backend/internal/domain/settings"
	"library-backend/internal/domain/uow"
	"library-backend/pkg/id"

	"gorm.io/gorm"
)

type Promoter interface {
	Promote(ctx context.Context, r uow.Repos, bookID, copyID uint64) (*reservation.Reservation, error)
}

type Usecase struct {
	repo     bookreturn.Repository
	uow      uow.UnitOfWork
	settings settings.Provider
	queue    Promoter
	now      func() time.Time
}

func NewUsecase(repo bookreturn.Repository, tx uow.UnitOfWork, sp settings.Provider, queue Promoter) *Usecase {
	return &Usecase{repo: repo, uow: tx, settings: sp, queue: queue, now: time.Now}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// ProcessReturn records a physical return. A fine-free return closes the borrowing at
// once; a fined one waits for staff approval with the borrowing still active.
func (u *Usecase) ProcessReturn(ctx context.Context, a actor.Actor, in ProcessReturnInput) (*ReturnDTO, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	cond := bookreturn.Condition(in.Condition)
	if !cond.Valid() {
		return nil, apperr.Validationf("return_condition must be one of good, fair, damaged, lost")
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

	var dto *ReturnDTO
	err = u.uow.WithinBorrowingTx(ctx, in.BorrowingID, func(r uow.Repos, b *borrowing.Borrowing) error {
		if !borrowing.ValidTransition(borrowing.ActionReturn, b.Status) {
			return fmt.Errorf("%w: cannot return a %s borrowing", borrowing.ErrInvalidState, b.Status)
		}
		if _, err := r.Returns.GetPendingByBorrowingID(ctx, b.ID); err == nil {
			return bookreturn.ErrReturnPending
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		assessment, err := u.assess(ctx, r, b, cond)
		if err != nil {
			return err
		}

		ret := &bookreturn.Return{
			ReturnID:        id.NewID32(),
			BorrowingID:     b.ID,
			ReturnedBy:      b.UserID,
			ProcessedBy:     a.UserID,
			ReturnedDate:    now,
			ReturnCondition: cond,
			FineAmount:      assessment.Amount,
			ApprovalStatus:  bookreturn.ApprovalPending,
			Notes:           in.Notes,
		}
		if !assessment.RequiresApproval() {
			approver := a.UserID
			ret.ApprovalStatus = bookreturn.ApprovalApproved
			ret.ApprovedBy = &approver
			ret.ApprovedAt = &now
		}
		if err := r.Returns.Create(ctx, ret); err != nil {
			return err
		}
		if ret.ApprovalStatus == bookreturn.ApprovalApproved {
			if err := u.finalize(ctx, r, b, ret); err != nil {
				return err
			}
		}
		out := toDTO(ret, b.BorrowingID, string(b.Status))
		dto = &out
		return nil
	})
	if err != nil {
		return nil, notFound(err, borrowing.ErrNotFound)
	}
	return dto, nil
}

func (u *Usecase) assess(ctx context.Context, r uow.Repos, b *borrowing.Borrowing, cond bookreturn.Condition) (fine.Assessment, error) {
	if fine.IsFineFree(string(cond)) {
		return fine.Assess(string(cond), nil), nil
	}
	candidates, err := r.FineTypes.ListActiveByCondition(ctx, fine.Condition(cond))
	if err != nil {
		return fine.Assessment{}, err
	}
	a := fine.Assess(string(cond), candidates)
	switch {
	case a.Unconfigured:
		slog.WarnContext(ctx, "no active fine type for return condition, charging nothing",
			"condition", cond, "borrowing_id", b.BorrowingID)
	case a.Ambiguous:
		slog.WarnContext(ctx, "several active fine types for return condition, using lowest id",
			"condition", cond, "fine_type_id", a.FineType.ID, "borrowing_id", b.BorrowingID)
	}
	return a, nil
}

// finalize closes the borrowing and puts the copy back into circulation. A lost
// copy still closes the borrowing as returned; the condition records the loss.
func (u *Usecase) finalize(ctx context.Context, r uow.Repos, b *borrowing.Borrowing, ret *bookreturn.Return) error {
	returned := ret.ReturnedDate
	cond := string(ret.ReturnCondition)
	b.Status = borrowing.StatusReturned
	b.ReturnedDate = &returned
	b.ReturnCondition = &cond
	b.OverdueSince = nil
	if err := r.Borrowings.Save(ctx, b); err != nil {
		return err
	}

	if ret.ReturnCondition == bookreturn.ConditionLost {
		ok, err := r.Catalog.TransitionCopy(ctx, b.BookCopyID, catalog.CopyBorrowed, catalog.CopyLost)
		if err != nil {
			return err
		}
		if !ok {
			slog.WarnContext(ctx, "lost copy was not marked borrowed", "copy_id", b.BookCopyID)
		}
		return nil
	}

	if err := r.Catalog.UpdateCondition(ctx, b.BookCopyID, catalog.Condition(ret.ReturnCondition)); err != nil {
		return err
	}
	ok, err := r.Catalog.TransitionCopy(ctx, b.BookCopyID, catalog.CopyBorrowed, catalog.CopyAvailable)
	if err != nil {
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "returned copy was not marked borrowed", "copy_id", b.BookCopyID)
		return nil
	}
	if u.queue == nil {
		return nil
	}
	_, err = u.queue.Promote(ctx, r, b.BookID, b.BookCopyID)
	return err
}

// withReturn locks the borrowing first, then the return, which is the same order
// ProcessReturn takes them in.
func (u *Usecase) withReturn(ctx context.Context, returnID string, fn func(r uow.Repos, ret *bookreturn.Return, b *borrowing.Borrowing) error) error {
	peek, err := u.repo.GetByReturnID(ctx, returnID)
	if err != nil {
		return notFound(err, bookreturn.ErrNotFound)
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Borrowings.GetByIDForUpdate(ctx, peek.BorrowingID)
		if err != nil {
			return notFound(err, borrowing.ErrNotFound)
		}
		ret, err := r.Returns.GetByReturnIDForUpdate(ctx, returnID)
		if err != nil {
			return notFound(err, bookreturn.ErrNotFound)
		}
		return fn(r, ret, b)
	})
}

func (u *Usecase) Approve(ctx context.Context, a actor.Actor, returnID string) (*ReturnDTO, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	now := u.now().UTC()
	var dto *ReturnDTO
	err := u.withReturn(ctx, returnID, func(r uow.Repos, ret *bookreturn.Return, b *borrowing.Borrowing) error {
		if ret.ApprovalStatus != bookreturn.ApprovalPending {
			return fmt.Errorf("%w: return already %s", bookreturn.ErrInvalidState, ret.ApprovalStatus)
		}
		if !borrowing.ValidTransition(borrowing.ActionReturn, b.Status) {
			return fmt.Errorf("%w: borrowing is %s", borrowing.ErrInvalidState, b.Status)
		}
		approver := a.UserID
		ret.ApprovalStatus = bookreturn.ApprovalApproved
		ret.ApprovedBy = &approver
		ret.ApprovedAt = &now
		if err := r.Returns.Save(ctx, ret); err != nil {
			return err
		}
		if err := u.finalize(ctx, r, b, ret); err != nil {
			return err
		}
		out := toDTO(ret, b.BorrowingID, string(b.Status))
		dto = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "return approved", "return_id", returnID, "fine", dto.FineAmount.StringFixed(2), "by", a.UserID)
	return dto, nil
}

// Reject voids a pending return; the borrowing stays active and the copy must be processed again.
func (u *Usecase) Reject(ctx context.Context, a actor.Actor, returnID string, in RejectInput) (*ReturnDTO, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	var dto *ReturnDTO
	err := u.withReturn(ctx, returnID, func(r uow.Repos, ret *bookreturn.Return, b *borrowing.Borrowing) error {
		if ret.ApprovalStatus != bookreturn.ApprovalPending {
			return fmt.Errorf("%w: return already %s", bookreturn.ErrInvalidState, ret.ApprovalStatus)
		}
		reason := in.Reason
		ret.ApprovalStatus = bookreturn.ApprovalRejected
		ret.RejectionReason = &reason
		if err := r.Returns.Save(ctx, ret); err != nil {
			return err
		}
		out := toDTO(ret, b.BorrowingID, string(b.Status))
		dto = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) PayFine(ctx context.Context, a actor.Actor, returnID string) (*ReturnDTO, error) {
	return u.settle(ctx, a, returnID, true)
}

func (u *Usecase) WaiveFine(ctx context.Context, a actor.Actor, returnID string) (*ReturnDTO, error) {
	return u.settle(ctx, a, returnID, false)
}

// settle marks the fine paid or waived. Repeating the same action is a no-op;
// the other action after settlement fails.
func (u *Usecase) settle(ctx context.Context, a actor.Actor, returnID string, paid bool) (*ReturnDTO, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	now := u.now().UTC()
	var dto *ReturnDTO
	err := u.withReturn(ctx, returnID, func(r uow.Repos, ret *bookreturn.Return, b *borrowing.Borrowing) error {
		if !ret.HasFine() {
			return bookreturn.ErrNoFine
		}
		if ret.ApprovalStatus == bookreturn.ApprovalRejected {
			return fmt.Errorf("%w: return was rejected", bookreturn.ErrInvalidState)
		}
		done, other := ret.FinePaid, ret.FineWaived
		if !paid {
			done, other = ret.FineWaived, ret.FinePaid
		}
		if other {
			return bookreturn.ErrFineAlreadySettled
		}
		if !done {
			if paid {
				ret.FinePaid = true
			} else {
				ret.FineWaived = true
			}
			ret.FineSettledAt = &now
			if err := r.Returns.Save(ctx, ret); err != nil {
				return err
			}
		}
		out := toDTO(ret, b.BorrowingID, string(b.Status))
		dto = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, a actor.Actor, returnID string) (*ReturnDTO, error) {
	var dto *ReturnDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ret, err := r.Returns.GetByReturnID(ctx, returnID)
		if err != nil {
			return notFound(err, bookreturn.ErrNotFound)
		}
		if err := actor.RequireSelfOrStaff(a, ret.ReturnedBy); err != nil {
			return err
		}
		b, err := r.Borrowings.GetByID(ctx, ret.BorrowingID)
		if err != nil {
			return notFound(err, borrowing.ErrNotFound)
		}
		out := toDTO(ret, b.BorrowingID, string(b.Status))
		dto = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
