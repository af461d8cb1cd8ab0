package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"library-backend/internal/domain/apperr"
)

type Mode string

const (
	ModeWeekdays Mode = "weekdays"
	ModeEveryday Mode = "everyday"
	ModeCustom   Mode = "custom"
)

// Persisted keys of the library_settings table.
const (
	KeyOperatingHoursMode = "operating_hours_mode"
	KeyOpeningTime        = "opening_time"
	KeyClosingTime        = "closing_time"
	KeyClosedOnWeekends   = "closed_on_weekends"
	KeyClosedOnHolidays   = "closed_on_holidays"
	KeyCustomClosedDays   = "custom_closed_days"
	KeyHolidays           = "holidays"
)

// Setting is one row of the key/value table.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64;column:key"`
	Value     string    `gorm:"type:text;not null;column:value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Setting) TableName() string { return "library_settings" }

// LibrarySettings is the typed view handed to the calendar gate.
type LibrarySettings struct {
	OperatingHoursMode Mode     `json:"operating_hours_mode"`
	OpeningTime        string   `json:"opening_time"`
	ClosingTime        string   `json:"closing_time"`
	ClosedOnWeekends   bool     `json:"closed_on_weekends"`
	ClosedOnHolidays   bool     `json:"closed_on_holidays"`
	CustomClosedDays   []string `json:"custom_closed_days"`
	Holidays           []string `json:"holidays"`

	// Location is not persisted; it comes from process config.
	Location *time.Location `json:"-"`
}

func Defaults() LibrarySettings {
	return LibrarySettings{
		OperatingHoursMode: ModeWeekdays,
		OpeningTime:        "08:00",
		ClosingTime:        "17:00",
		ClosedOnWeekends:   true,
		ClosedOnHolidays:   true,
		CustomClosedDays:   []string{},
		Holidays:           []string{},
	}
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := weekdayByName[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClosedWeekdays returns the custom closed days as a set.
func (s LibrarySettings) ClosedWeekdays() map[time.Weekday]bool {
	out := make(map[time.Weekday]bool, len(s.CustomClosedDays))
	for _, name := range s.CustomClosedDays {
		if d, ok := ParseWeekday(name); ok {
			out[d] = true
		}
	}
	return out
}

func (s LibrarySettings) Validate() error {
	switch s.OperatingHoursMode {
	case ModeWeekdays, ModeEveryday, ModeCustom:
	default:
		return apperr.Validationf("operating_hours_mode must be one of weekdays, everyday, custom")
	}
	open, err := ParseClock(s.OpeningTime)
	if err != nil {
		return apperr.Validationf("opening_time: %v", err)
	}
	closing, err := ParseClock(s.ClosingTime)
	if err != nil {
		return apperr.Validationf("closing_time: %v", err)
	}
	if open >= closing {
		return apperr.Validationf("opening_time must be before closing_time")
	}
	for _, d := range s.CustomClosedDays {
		if _, ok := ParseWeekday(d); !ok {
			return apperr.Validationf("custom_closed_days: unknown weekday %q", d)
		}
	}
	if len(s.ClosedWeekdays()) == 7 {
		return apperr.Validationf("custom_closed_days cannot close every day")
	}
	for _, h := range s.Holidays {
		if _, err := time.Parse(time.DateOnly, h); err != nil {
			return apperr.Validationf("holidays: invalid date %q, want YYYY-MM-DD", h)
		}
	}
	return nil
}

// ToMap renders the settings into key/value rows.
func (s LibrarySettings) ToMap() map[string]string {
	days := s.CustomClosedDays
	if days == nil {
		days = []string{}
	}
	holidays := s.Holidays
	if holidays == nil {
		holidays = []string{}
	}
	d, _ := json.Marshal(days)
	h, _ := json.Marshal(holidays)
	return map[string]string{
		KeyOperatingHoursMode: string(s.OperatingHoursMode),
		KeyOpeningTime:        s.OpeningTime,
		KeyClosingTime:        s.ClosingTime,
		KeyClosedOnWeekends:   strconv.FormatBool(s.ClosedOnWeekends),
		KeyClosedOnHolidays:   strconv.FormatBool(s.ClosedOnHolidays),
		KeyCustomClosedDays:   string(d),
		KeyHolidays:           string(h),
	}
}

// FromMap reads key/value rows, falling back to defaults for missing keys.
func FromMap(kv map[string]string) (LibrarySettings, error) {
	s := Defaults()
	if v, ok := kv[KeyOperatingHoursMode]; ok {
		s.OperatingHoursMode = Mode(v)
	}
	if v, ok := kv[KeyOpeningTime]; ok {
		s.OpeningTime = v
	}
	if v, ok := kv[KeyClosingTime]; ok {
		s.ClosingTime = v
	}
	if v, ok := kv[KeyClosedOnWeekends]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("setting %s: %w", KeyClosedOnWeekends, err)
		}
		s.ClosedOnWeekends = b
	}
	if v, ok := kv[KeyClosedOnHolidays]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("setting %s: %w", KeyClosedOnHolidays, err)
		}
		s.ClosedOnHolidays = b
	}
	if v, ok := kv[KeyCustomClosedDays]; ok && v != "" {
		if err := json.Unmarshal([]byte(v), &s.CustomClosedDays); err != nil {
			return s, fmt.Errorf("setting %s: %w", KeyCustomClosedDays, err)
		}
	}
	if v, ok := kv[KeyHolidays]; ok && v != "" {
		if err := json.Unmarshal([]byte(v), &s.Holidays); err != nil {
			return s, fmt.Errorf("setting %s: %w", KeyHolidays, err)
		}
	}
	return s, nil
}
