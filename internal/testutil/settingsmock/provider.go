package settingsmock

import (
	"context"

	"library-backend/internal/domain/settings"
)

var _ settings.Provider = (*Provider)(nil)

// Provider returns S (or Err) on every call.
type Provider struct {
	S   settings.LibrarySettings
	Err error
}

// Open is a provider whose library never closes.
func Open() *Provider {
	s := settings.Defaults()
	s.OperatingHoursMode = settings.ModeCustom
	s.ClosedOnHolidays = false
	s.OpeningTime, s.ClosingTime = "00:00", "23:59"
	return &Provider{S: s}
}

func (p *Provider) Current(context.Context) (settings.LibrarySettings, error) {
	return p.S, p.Err
}
