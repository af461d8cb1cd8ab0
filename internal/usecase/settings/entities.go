package settings

import "library-backend/internal/domain/calendar"

// UpdateInput is a partial update; nil fields keep their stored value.
type UpdateInput struct {
	OperatingHoursMode *string   `json:"operating_hours_mode" validate:"omitempty,oneof=weekdays everyday custom"`
	OpeningTime        *string   `json:"opening_time" validate:"omitempty,hhmm"`
	ClosingTime        *string   `json:"closing_time" validate:"omitempty,hhmm"`
	ClosedOnWeekends   *bool     `json:"closed_on_weekends"`
	ClosedOnHolidays   *bool     `json:"closed_on_holidays"`
	CustomClosedDays   *[]string `json:"custom_closed_days" validate:"omitempty,dive,weekday"`
	Holidays           *[]string `json:"holidays" validate:"omitempty,dive,datetime=2006-01-02"`
}

type StatusDTO struct {
	calendar.Status
	Timezone  string `json:"timezone"`
	LocalTime string `json:"local_time"`
}
