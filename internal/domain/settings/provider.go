package settings

import "context"

// Provider hands out the current settings snapshot. Callers never hold it across requests.
type Provider interface {
	Current(ctx context.Context) (LibrarySettings, error)
}
