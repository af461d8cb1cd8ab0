package borrowing

import (
	"context"
	"testing"
	"time"

	"library-backend/internal/adapter/repository/gormrepo"
	"library-backend/internal/domain/actor"
	domain "library-backend/internal/domain/borrowing"
	"library-backend/internal/domain/calendar"
	"library-backend/internal/domain/catalog"
	"library-backend/internal/testutil/settingsmock"
	"library-backend/internal/testutil/testdb"
	resuc "library-backend/internal/usecase/reservation"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	member = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	other  = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	staff  = "cccccccccccccccccccccccccccccccc"
)

var (
	asMember    = actor.Actor{UserID: member, Role: actor.RoleMember}
	asLibrarian = actor.Actor{UserID: staff, Role: actor.RoleLibrarian}
	// Monday 2025-09-01 10:00 library time
	monday = time.Date(2025, 9, 1, 10, 0, 0, 0, calendar.DefaultLocation)
)

type harness struct {
	db    *gorm.DB
	uc    *Usecase
	queue *resuc.Usecase
	books *gormrepo.CatalogRepository
	clock time.Time
}

func newHarness(t *testing.T, p domain.Policy) *harness {
	t.Helper()
	db := testdb.Open(t)
	tx := gormrepo.NewGormUoW(db)
	sp := settingsmock.Open()
	h := &harness{db: db, books: gormrepo.NewCatalogRepository(db), clock: monday}
	clock := func() time.Time { return h.clock }

	h.queue = resuc.NewUsecase(gormrepo.NewReservationRepository(db), tx, sp,
		resuc.Policy{PickupWindow: 48 * time.Hour, Borrowing: p}).WithClock(clock)
	h.uc = NewUsecase(gormrepo.NewBorrowingRepository(db), tx, sp, h.queue, p).WithClock(clock)
	return h
}

func (h *harness) addCopies(t *testing.T, n int) (*catalog.Book, []uint64) {
	t.Helper()
	ctx := context.Background()
	b := &catalog.Book{ISBN: time.Now().Format("150405.000000000"), Title: "Dune"}
	require.NoError(t, h.books.CreateBook(ctx, b))
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		c := &catalog.BookCopy{
			BookID:    b.ID,
			Barcode:   b.ISBN + "-" + string(rune('a'+i)),
			Condition: catalog.ConditionGood,
			Status:    catalog.CopyAvailable,
		}
		require.NoError(t, h.books.CreateCopy(ctx, c))
		ids = append(ids, c.ID)
	}
	return b, ids
}

func (h *harness) copyStatus(t *testing.T, id uint64) catalog.CopyStatus {
	t.Helper()
	c, err := h.books.GetCopy(context.Background(), id)
	require.NoError(t, err)
	return c.Status
}
