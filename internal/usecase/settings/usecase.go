package settings

import (
	"context"
	"log/slog"
	"time"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/calendar"
	domain "library-backend/internal/domain/settings"
)

// Cache stores the last loaded snapshot. A miss is (nil, nil).
type Cache interface {
	Get(ctx context.Context) (*domain.LibrarySettings, error)
	Set(ctx context.Context, s domain.LibrarySettings) error
	Invalidate(ctx context.Context) error
}

type Usecase struct {
	repo  domain.Repository
	cache Cache
	loc   *time.Location
	now   func() time.Time
}

// NewUsecase: cache may be nil, loc defaults to the gate's default zone.
func NewUsecase(repo domain.Repository, cache Cache, loc *time.Location) *Usecase {
	if loc == nil {
		loc = calendar.DefaultLocation
	}
	return &Usecase{repo: repo, cache: cache, loc: loc, now: time.Now}
}

// Seed writes the default rows that are missing.
func (u *Usecase) Seed(ctx context.Context) error {
	return u.repo.EnsureDefaults(ctx, domain.Defaults().ToMap())
}

// Current implements domain.Provider.
func (u *Usecase) Current(ctx context.Context) (domain.LibrarySettings, error) {
	if u.cache != nil {
		cached, err := u.cache.Get(ctx)
		if err != nil {
			slog.WarnContext(ctx, "settings cache read failed", "err", err)
		} else if cached != nil {
			cached.Location = u.loc
			return *cached, nil
		}
	}

	kv, err := u.repo.All(ctx)
	if err != nil {
		return domain.LibrarySettings{}, err
	}
	s, err := domain.FromMap(kv)
	if err != nil {
		return domain.LibrarySettings{}, err
	}
	s.Location = u.loc

	if u.cache != nil {
		if err := u.cache.Set(ctx, s); err != nil {
			slog.WarnContext(ctx, "settings cache write failed", "err", err)
		}
	}
	return s, nil
}

func (u *Usecase) Update(ctx context.Context, a actor.Actor, in UpdateInput) (domain.LibrarySettings, error) {
	if a.Role != actor.RoleAdmin {
		return domain.LibrarySettings{}, actor.ErrForbidden
	}
	s, err := u.Current(ctx)
	if err != nil {
		return domain.LibrarySettings{}, err
	}
	apply(&s, in)
	if err := s.Validate(); err != nil {
		return domain.LibrarySettings{}, err
	}
	if err := u.repo.Upsert(ctx, s.ToMap()); err != nil {
		return domain.LibrarySettings{}, err
	}
	if u.cache != nil {
		if err := u.cache.Invalidate(ctx); err != nil {
			slog.WarnContext(ctx, "settings cache invalidate failed", "err", err)
		}
	}
	slog.InfoContext(ctx, "library settings updated", "by", a.UserID, "mode", s.OperatingHoursMode)
	return s, nil
}

func (u *Usecase) Status(ctx context.Context) (*StatusDTO, error) {
	s, err := u.Current(ctx)
	if err != nil {
		return nil, err
	}
	now := u.now()
	return &StatusDTO{
		Status:    calendar.IsOperational(now, s),
		Timezone:  u.loc.String(),
		LocalTime: now.In(u.loc).Format("2006-01-02 15:04"),
	}, nil
}

func apply(s *domain.LibrarySettings, in UpdateInput) {
	if in.OperatingHoursMode != nil {
		s.OperatingHoursMode = domain.Mode(*in.OperatingHoursMode)
	}
	if in.OpeningTime != nil {
		s.OpeningTime = *in.OpeningTime
	}
	if in.ClosingTime != nil {
		s.ClosingTime = *in.ClosingTime
	}
	if in.ClosedOnWeekends != nil {
		s.ClosedOnWeekends = *in.ClosedOnWeekends
	}
	if in.ClosedOnHolidays != nil {
		s.ClosedOnHolidays = *in.ClosedOnHolidays
	}
	if in.CustomClosedDays != nil {
		s.CustomClosedDays = *in.CustomClosedDays
	}
	if in.Holidays != nil {
		s.Holidays = *in.Holidays
	}
}

var _ domain.Provider = (*Usecase)(nil)
