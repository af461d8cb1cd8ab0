package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"library-backend/internal/adapter/repository/gormrepo"
	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/calendar"
	domain "library-backend/internal/domain/settings"
	"library-backend/internal/infrastructure/cache"
	"library-backend/internal/testutil/testdb"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

var asAdmin = actor.Actor{UserID: "cccccccccccccccccccccccccccccccc", Role: actor.RoleAdmin}

func newUsecase(t *testing.T) (*Usecase, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := cache.OpenRedis(mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	uc := NewUsecase(gormrepo.NewSettingsRepository(testdb.Open(t)), cache.NewSettingsCache(rdb, time.Hour), nil)
	require.NoError(t, uc.Seed(context.Background()))
	return uc, mr
}

func strPtr(s string) *string { return &s }

func TestCurrent_SeededDefaultsAndCache(t *testing.T) {
	uc, mr := newUsecase(t)
	ctx := context.Background()

	s, err := uc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.ModeWeekdays, s.OperatingHoursMode)
	require.Equal(t, "08:00", s.OpeningTime)
	require.Equal(t, calendar.DefaultLocation, s.Location)
	require.Len(t, mr.Keys(), 1, "snapshot should be cached after first read")

	again, err := uc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, calendar.DefaultLocation, again.Location, "location survives the cache")
}

func TestUpdate_ValidatesAndInvalidatesCache(t *testing.T) {
	uc, mr := newUsecase(t)
	ctx := context.Background()
	_, err := uc.Current(ctx)
	require.NoError(t, err)

	_, err = uc.Update(ctx, actor.Actor{UserID: "x", Role: actor.RoleLibrarian}, UpdateInput{})
	require.ErrorIs(t, err, actor.ErrForbidden)

	_, err = uc.Update(ctx, asAdmin, UpdateInput{OpeningTime: strPtr("18:00")})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err), "opening after closing")

	days := []string{"wednesday"}
	got, err := uc.Update(ctx, asAdmin, UpdateInput{
		OperatingHoursMode: strPtr("custom"),
		CustomClosedDays:   &days,
	})
	require.NoError(t, err)
	require.Equal(t, domain.ModeCustom, got.OperatingHoursMode)
	require.Empty(t, mr.Keys(), "update must drop the cached snapshot")

	s, err := uc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"wednesday"}, s.CustomClosedDays)
	require.Equal(t, "17:00", s.ClosingTime, "untouched fields keep their value")
}

func TestStatus(t *testing.T) {
	uc, _ := newUsecase(t)
	uc.now = func() time.Time { return time.Date(2025, 9, 6, 10, 0, 0, 0, calendar.DefaultLocation) }

	st, err := uc.Status(context.Background())
	require.NoError(t, err)
	require.False(t, st.Operational)
	require.Equal(t, "closed on weekends", st.Reason)
	require.Equal(t, "2025-09-06 10:00", st.LocalTime)
}

type failingRepo struct{ domain.Repository }

func (failingRepo) All(context.Context) (map[string]string, error) { return nil, errors.New("db down") }

func TestCurrent_RepoErrorWithoutCache(t *testing.T) {
	uc := NewUsecase(failingRepo{}, nil, time.UTC)
	_, err := uc.Current(context.Background())
	require.Error(t, err)
}
