package returns

import (
	"context"
	"testing"
	"time"

	"library-backend/internal/adapter/repository/gormrepo"
	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/bookreturn"
	"library-backend/internal/domain/borrowing"
	"library-backend/internal/domain/calendar"
	"library-backend/internal/domain/catalog"
	"library-backend/internal/domain/fine"
	"library-backend/internal/domain/reservation"
	"library-backend/internal/testutil/settingsmock"
	"library-backend/internal/testutil/testdb"
	borrowuc "library-backend/internal/usecase/borrowing"
	resuc "library-backend/internal/usecase/reservation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	member = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	staff  = "cccccccccccccccccccccccccccccccc"
)

var (
	asMember    = actor.Actor{UserID: member, Role: actor.RoleMember}
	asLibrarian = actor.Actor{UserID: staff, Role: actor.RoleLibrarian}
	monday      = time.Date(2025, 9, 1, 10, 0, 0, 0, calendar.DefaultLocation)
)

type harness struct {
	uc        *Usecase
	borrowing *borrowuc.Usecase
	queue     *resuc.Usecase
	books     *gormrepo.CatalogRepository
	fines     *gormrepo.FineTypeRepository
	book      *catalog.Book
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testdb.Open(t)
	tx := gormrepo.NewGormUoW(db)
	sp := settingsmock.Open()
	clock := func() time.Time { return monday }
	p := borrowing.DefaultPolicy()

	h := &harness{books: gormrepo.NewCatalogRepository(db), fines: gormrepo.NewFineTypeRepository(db)}
	h.queue = resuc.NewUsecase(gormrepo.NewReservationRepository(db), tx, sp,
		resuc.Policy{PickupWindow: 48 * time.Hour, Borrowing: p}).WithClock(clock)
	h.borrowing = borrowuc.NewUsecase(gormrepo.NewBorrowingRepository(db), tx, sp, h.queue, p).WithClock(clock)
	h.uc = NewUsecase(gormrepo.NewReturnRepository(db), tx, sp, h.queue).WithClock(clock)

	h.book = &catalog.Book{ISBN: "978-0441172719", Title: "Dune"}
	require.NoError(t, h.books.CreateBook(context.Background(), h.book))
	return h
}

// lend creates and approves a borrowing for a fresh copy.
func (h *harness) lend(t *testing.T, barcode string) (string, uint64) {
	t.Helper()
	ctx := context.Background()
	c := &catalog.BookCopy{BookID: h.book.ID, Barcode: barcode, Condition: catalog.ConditionGood, Status: catalog.CopyAvailable}
	require.NoError(t, h.books.CreateCopy(ctx, c))
	out, err := h.borrowing.Create(ctx, asMember, borrowuc.CreateInput{UserID: member, CopyIDs: []uint64{c.ID}})
	require.NoError(t, err)
	_, err = h.borrowing.Approve(ctx, asLibrarian, out[0].BorrowingID)
	require.NoError(t, err)
	return out[0].BorrowingID, c.ID
}

func (h *harness) fineType(t *testing.T, code string, cond fine.Condition, amount int64) {
	t.Helper()
	require.NoError(t, h.fines.Create(context.Background(), &fine.FineType{
		Code: code, BookCondition: cond, Amount: decimal.NewFromInt(amount), IsActive: true,
	}))
}

func (h *harness) copy(t *testing.T, id uint64) *catalog.BookCopy {
	t.Helper()
	c, err := h.books.GetCopy(context.Background(), id)
	require.NoError(t, err)
	return c
}

func TestProcessReturn_GoodConditionClosesImmediately(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fineType(t, "FAIR_CONDITION", fine.ConditionFair, 25000)
	bid, copyID := h.lend(t, "C-1")

	ret, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "good"})
	require.NoError(t, err)
	require.True(t, ret.FineAmount.IsZero())
	require.Equal(t, string(bookreturn.ApprovalApproved), ret.ApprovalStatus)
	require.Equal(t, string(borrowing.StatusReturned), ret.BorrowingStatus)
	require.Equal(t, member, ret.ReturnedBy)
	require.Equal(t, staff, ret.ProcessedBy)

	b, err := h.borrowing.Get(ctx, asMember, bid)
	require.NoError(t, err)
	require.NotNil(t, b.ReturnedDate)
	require.Equal(t, "good", *b.ReturnCondition)
	require.Equal(t, catalog.CopyAvailable, h.copy(t, copyID).Status)
}

func TestProcessReturn_DamagedWaitsForApproval(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fineType(t, "DAMAGED_CONDITION", fine.ConditionDamaged, 100000)
	bid, copyID := h.lend(t, "C-2")

	ret, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "damaged", Notes: "torn cover"})
	require.NoError(t, err)
	require.True(t, ret.FineAmount.Equal(decimal.NewFromInt(100000)), "fine=%s", ret.FineAmount)
	require.Equal(t, string(bookreturn.ApprovalPending), ret.ApprovalStatus)
	require.Equal(t, string(borrowing.StatusActive), ret.BorrowingStatus)
	require.Equal(t, catalog.CopyBorrowed, h.copy(t, copyID).Status)

	_, err = h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "damaged"})
	require.ErrorIs(t, err, bookreturn.ErrReturnPending)

	approved, err := h.uc.Approve(ctx, asLibrarian, ret.ReturnID)
	require.NoError(t, err)
	require.Equal(t, string(bookreturn.ApprovalApproved), approved.ApprovalStatus)
	require.Equal(t, staff, *approved.ApprovedBy)
	require.Equal(t, string(borrowing.StatusReturned), approved.BorrowingStatus)

	c := h.copy(t, copyID)
	require.Equal(t, catalog.CopyAvailable, c.Status)
	require.Equal(t, catalog.ConditionDamaged, c.Condition)

	_, err = h.uc.Approve(ctx, asLibrarian, ret.ReturnID)
	require.ErrorIs(t, err, bookreturn.ErrInvalidState)
}

func TestProcessReturn_UnconfiguredConditionChargesNothing(t *testing.T) {
	h := newHarness(t)
	bid, copyID := h.lend(t, "C-3")

	ret, err := h.uc.ProcessReturn(context.Background(), asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "damaged"})
	require.NoError(t, err)
	require.True(t, ret.FineAmount.IsZero())
	require.Equal(t, string(bookreturn.ApprovalApproved), ret.ApprovalStatus)
	require.Equal(t, catalog.CopyAvailable, h.copy(t, copyID).Status)
}

func TestProcessReturn_FineIsDeterministic(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fineType(t, "FAIR_CONDITION", fine.ConditionFair, 25000)

	var amounts []decimal.Decimal
	for _, barcode := range []string{"D-1", "D-2"} {
		bid, _ := h.lend(t, barcode)
		ret, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "fair"})
		require.NoError(t, err)
		amounts = append(amounts, ret.FineAmount)
	}
	require.True(t, amounts[0].Equal(amounts[1]))
	require.True(t, amounts[0].Equal(decimal.NewFromInt(25000)))
}

func TestProcessReturn_Guards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	bid, _ := h.lend(t, "G-1")

	_, err := h.uc.ProcessReturn(ctx, asMember, ProcessReturnInput{BorrowingID: bid, Condition: "good"})
	require.ErrorIs(t, err, actor.ErrForbidden)

	_, err = h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "soggy"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: "ffffffffffffffffffffffffffffffff", Condition: "good"})
	require.ErrorIs(t, err, borrowing.ErrNotFound)

	_, err = h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "good"})
	require.NoError(t, err)
	_, err = h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "good"})
	require.ErrorIs(t, err, borrowing.ErrInvalidState, "returned borrowings cannot be returned again")
}

func TestReject_KeepsBorrowingActive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fineType(t, "DAMAGED_CONDITION", fine.ConditionDamaged, 100000)
	bid, copyID := h.lend(t, "J-1")

	ret, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "damaged"})
	require.NoError(t, err)
	rejected, err := h.uc.Reject(ctx, asLibrarian, ret.ReturnID, RejectInput{Reason: "wrong copy scanned"})
	require.NoError(t, err)
	require.Equal(t, string(bookreturn.ApprovalRejected), rejected.ApprovalStatus)
	require.Equal(t, string(borrowing.StatusActive), rejected.BorrowingStatus)
	require.Equal(t, catalog.CopyBorrowed, h.copy(t, copyID).Status)

	_, err = h.uc.PayFine(ctx, asLibrarian, ret.ReturnID)
	require.ErrorIs(t, err, bookreturn.ErrInvalidState)

	// the book can be processed again
	again, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "good"})
	require.NoError(t, err)
	require.Equal(t, string(borrowing.StatusReturned), again.BorrowingStatus)
}

func TestPayAndWaive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fineType(t, "DAMAGED_CONDITION", fine.ConditionDamaged, 100000)

	bid, _ := h.lend(t, "P-1")
	ret, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "damaged"})
	require.NoError(t, err)

	paid, err := h.uc.PayFine(ctx, asLibrarian, ret.ReturnID)
	require.NoError(t, err)
	require.True(t, paid.FinePaid)
	again, err := h.uc.PayFine(ctx, asLibrarian, ret.ReturnID)
	require.NoError(t, err, "paying twice is idempotent")
	require.True(t, again.FinePaid)
	require.False(t, again.FineWaived)

	_, err = h.uc.WaiveFine(ctx, asLibrarian, ret.ReturnID)
	require.ErrorIs(t, err, bookreturn.ErrFineAlreadySettled)

	bid2, _ := h.lend(t, "P-2")
	ret2, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid2, Condition: "damaged"})
	require.NoError(t, err)
	waived, err := h.uc.WaiveFine(ctx, asLibrarian, ret2.ReturnID)
	require.NoError(t, err)
	require.True(t, waived.FineWaived)
	_, err = h.uc.WaiveFine(ctx, asLibrarian, ret2.ReturnID)
	require.NoError(t, err)
	_, err = h.uc.PayFine(ctx, asLibrarian, ret2.ReturnID)
	require.ErrorIs(t, err, bookreturn.ErrFineAlreadySettled)

	bid3, _ := h.lend(t, "P-3")
	free, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid3, Condition: "good"})
	require.NoError(t, err)
	_, err = h.uc.PayFine(ctx, asLibrarian, free.ReturnID)
	require.ErrorIs(t, err, bookreturn.ErrNoFine)
}

func TestProcessReturn_LostCopyLeavesCirculation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	bid, copyID := h.lend(t, "L-1")
	waiting := actor.Actor{UserID: "dddddddddddddddddddddddddddddddd", Role: actor.RoleMember}
	res, err := h.queue.Enqueue(ctx, waiting, resuc.EnqueueInput{UserID: waiting.UserID, BookID: h.book.ID})
	require.NoError(t, err)

	ret, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "lost"})
	require.NoError(t, err)
	require.Equal(t, string(borrowing.StatusReturned), ret.BorrowingStatus)
	require.Equal(t, catalog.CopyLost, h.copy(t, copyID).Status)

	b, err := h.borrowing.Get(ctx, asLibrarian, bid)
	require.NoError(t, err)
	require.Equal(t, string(borrowing.StatusReturned), b.Status)
	require.NotNil(t, b.ReturnedDate)
	require.Equal(t, "lost", *b.ReturnCondition)

	got, err := h.queue.Get(ctx, waiting, res.ReservationID)
	require.NoError(t, err)
	require.Equal(t, string(reservation.StatusPending), got.Status)
}

func TestReturn_PromotesQueueInOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	bid, copyID := h.lend(t, "Q-1")

	users := []string{
		"11111111111111111111111111111111",
		"22222222222222222222222222222222",
		"33333333333333333333333333333333",
	}
	var ids []string
	for i, u := range users {
		r, err := h.queue.Enqueue(ctx, actor.Actor{UserID: u, Role: actor.RoleMember},
			resuc.EnqueueInput{UserID: u, BookID: h.book.ID})
		require.NoError(t, err)
		require.Equal(t, i+1, r.QueuePosition)
		ids = append(ids, r.ReservationID)
	}

	_, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "good"})
	require.NoError(t, err)
	require.Equal(t, catalog.CopyReserved, h.copy(t, copyID).Status)

	first, err := h.queue.Get(ctx, asLibrarian, ids[0])
	require.NoError(t, err)
	require.Equal(t, string(reservation.StatusReady), first.Status)
	require.True(t, first.ExpiryDate.Equal(monday.UTC().Add(48*time.Hour)))

	// R1 walks away: the held copy moves to R2
	_, err = h.queue.Cancel(ctx, actor.Actor{UserID: users[0], Role: actor.RoleMember}, ids[0])
	require.NoError(t, err)
	second, err := h.queue.Get(ctx, asLibrarian, ids[1])
	require.NoError(t, err)
	require.Equal(t, string(reservation.StatusReady), second.Status)
	require.Equal(t, copyID, *second.BookCopyID)
	third, err := h.queue.Get(ctx, asLibrarian, ids[2])
	require.NoError(t, err)
	require.Equal(t, string(reservation.StatusPending), third.Status)
}

func TestGet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	bid, _ := h.lend(t, "X-1")
	ret, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "good"})
	require.NoError(t, err)

	got, err := h.uc.Get(ctx, asMember, ret.ReturnID)
	require.NoError(t, err)
	require.Equal(t, bid, got.BorrowingID)

	_, err = h.uc.Get(ctx, actor.Actor{UserID: "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", Role: actor.RoleMember}, ret.ReturnID)
	require.ErrorIs(t, err, actor.ErrForbidden)

	_, err = h.uc.Get(ctx, asLibrarian, "ffffffffffffffffffffffffffffffff")
	require.ErrorIs(t, err, bookreturn.ErrNotFound)
}

func TestRenew_BlockedWhileFinedReturnAwaitsApproval(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fineType(t, "DAMAGED_CONDITION", fine.ConditionDamaged, 50000)
	bid, _ := h.lend(t, "C-R1")

	before, err := h.borrowing.Get(ctx, asMember, bid)
	require.NoError(t, err)

	ret, err := h.uc.ProcessReturn(ctx, asLibrarian, ProcessReturnInput{BorrowingID: bid, Condition: "damaged"})
	require.NoError(t, err)
	require.Equal(t, string(bookreturn.ApprovalPending), ret.ApprovalStatus)

	_, err = h.borrowing.Renew(ctx, asMember, bid)
	require.ErrorIs(t, err, bookreturn.ErrReturnPending)

	after, err := h.borrowing.Get(ctx, asMember, bid)
	require.NoError(t, err)
	require.Equal(t, 0, after.RenewalCount)
	require.True(t, before.DueDate.Equal(*after.DueDate), "due date moved: %v -> %v", before.DueDate, after.DueDate)

	// a rejected return leaves the loan open, so renewing works again
	_, err = h.uc.Reject(ctx, asLibrarian, ret.ReturnID, RejectInput{Reason: "wrong copy scanned"})
	require.NoError(t, err)
	renewed, err := h.borrowing.Renew(ctx, asMember, bid)
	require.NoError(t, err)
	require.Equal(t, 1, renewed.RenewalCount)
}
