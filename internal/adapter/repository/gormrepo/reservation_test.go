package gormrepo

import (
	"context"
	"testing"
	"time"

	"library-backend/internal/domain/catalog"
	"library-backend/internal/domain/reservation"
	"library-backend/internal/testutil/testdb"
	"library-backend/pkg/id"
)

func TestReservation_QueueQueries(t *testing.T) {
	db := testdb.Open(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	book, _ := seedCopy(t, db, "R-1", catalog.CopyBorrowed)

	now := time.Date(2025, 9, 1, 3, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)
	users := []string{
		"11111111111111111111111111111111",
		"22222222222222222222222222222222",
		"33333333333333333333333333333333",
	}
	for i, u := range users {
		r := &reservation.Reservation{
			ReservationID: id.NewID32(),
			UserID:        u,
			BookID:        book.ID,
			Status:        reservation.StatusPending,
			QueuePosition: 3 - i,
		}
		if i == 2 {
			r.Status = reservation.StatusReady
			r.ExpiryDate = &expired
		}
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	pending, err := repo.LockPending(ctx, book.ID)
	if err != nil {
		t.Fatalf("LockPending: %v", err)
	}
	if len(pending) != 2 || pending[0].QueuePosition != 2 || pending[1].QueuePosition != 3 {
		t.Fatalf("pending cohort not ordered: %+v", pending)
	}

	if ok, _ := repo.ExistsOpenForUser(ctx, users[2], book.ID); !ok {
		t.Fatalf("ready reservation counts as open")
	}
	if ok, _ := repo.ExistsOpenForUser(ctx, "44444444444444444444444444444444", book.ID); ok {
		t.Fatalf("unknown user has no reservation")
	}

	ready, err := repo.ListReadyExpired(ctx, now)
	if err != nil || len(ready) != 1 || ready[0].UserID != users[2] {
		t.Fatalf("ListReadyExpired = %+v, %v", ready, err)
	}
	if ready, _ := repo.ListReadyExpired(ctx, expired.Add(-time.Minute)); len(ready) != 0 {
		t.Fatalf("nothing expired yet, got %d", len(ready))
	}

	all, err := repo.ListByBook(ctx, book.ID)
	if err != nil || len(all) != 3 || all[0].QueuePosition != 1 {
		t.Fatalf("ListByBook = %+v, %v", all, err)
	}
}
