package calendar

import (
	"fmt"
	"time"

	"library-backend/internal/domain/apperr"
	"library-backend/internal/domain/settings"
)

var ErrLibraryClosed = apperr.Policy("LIBRARY_CLOSED", "library is closed")

// DefaultLocation is the library's civil time when none is configured (UTC+7).
var DefaultLocation = time.FixedZone("UTC+7", 7*60*60)

type Status struct {
	Operational  bool   `json:"operational"`
	Reason       string `json:"reason,omitempty"`
	NextOpenTime string `json:"next_open_time,omitempty"`
}

// IsOperational decides whether transactions may proceed at now. It has no side effects.
func IsOperational(now time.Time, s settings.LibrarySettings) Status {
	loc := s.Location
	if loc == nil {
		loc = DefaultLocation
	}
	local := now.In(loc)
	weekday := local.Weekday()

	closedDays := s.ClosedWeekdays()
	if closedDays[weekday] {
		return Status{
			Reason:       fmt.Sprintf("closed on %s (custom schedule)", weekday),
			NextOpenTime: nextOpenDay(weekday, offDays(s), s.OpeningTime),
		}
	}

	if s.ClosedOnHolidays && isHoliday(local, s.Holidays) {
		return Status{Reason: "closed on holiday", NextOpenTime: "tomorrow " + s.OpeningTime}
	}

	switch s.OperatingHoursMode {
	case settings.ModeWeekdays, settings.ModeEveryday, settings.ModeCustom:
	default:
		return Status{Reason: fmt.Sprintf("unknown operating hours mode %q", s.OperatingHoursMode)}
	}
	if isWeekend(weekday) && weekendsClosed(s) {
		return Status{Reason: "closed on weekends", NextOpenTime: nextOpenDay(weekday, offDays(s), s.OpeningTime)}
	}

	return checkWindow(local, s.OpeningTime, s.ClosingTime)
}

// Require returns ErrLibraryClosed carrying the gate reason when the library is closed.
func Require(now time.Time, s settings.LibrarySettings) error {
	st := IsOperational(now, s)
	if st.Operational {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrLibraryClosed, st.Reason)
}

func checkWindow(local time.Time, opening, closing string) Status {
	openAt, err := settings.ParseClock(opening)
	if err != nil {
		return Status{Reason: "opening time misconfigured"}
	}
	closeAt, err := settings.ParseClock(closing)
	if err != nil {
		return Status{Reason: "closing time misconfigured"}
	}
	minutes := local.Hour()*60 + local.Minute()
	switch {
	case minutes < openAt:
		return Status{Reason: "opens at " + opening, NextOpenTime: "today " + opening}
	case minutes >= closeAt:
		return Status{Reason: "closes at " + closing, NextOpenTime: "tomorrow " + opening}
	}
	return Status{Operational: true}
}

func isWeekend(d time.Weekday) bool { return d == time.Saturday || d == time.Sunday }

// weekendsClosed: custom mode takes weekday restrictions from custom_closed_days only.
func weekendsClosed(s settings.LibrarySettings) bool {
	switch s.OperatingHoursMode {
	case settings.ModeWeekdays:
		return true
	case settings.ModeEveryday:
		return s.ClosedOnWeekends
	}
	return false
}

// offDays is every weekday the library never opens: custom closed days plus
// the weekend when the mode closes it.
func offDays(s settings.LibrarySettings) map[time.Weekday]bool {
	off := s.ClosedWeekdays()
	if weekendsClosed(s) {
		off[time.Saturday], off[time.Sunday] = true, true
	}
	return off
}

func nextOpenDay(from time.Weekday, closed map[time.Weekday]bool, opening string) string {
	for i := 1; i <= 7; i++ {
		d := time.Weekday((int(from) + i) % 7)
		if !closed[d] {
			return fmt.Sprintf("%s %s", d, opening)
		}
	}
	return ""
}

func isHoliday(local time.Time, holidays []string) bool {
	date := local.Format(time.DateOnly)
	for _, h := range holidays {
		if h == date {
			return true
		}
	}
	return false
}
