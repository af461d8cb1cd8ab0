package settings

import "context"

type Repository interface {
	All(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, kv map[string]string) error
	// EnsureDefaults inserts missing keys only; existing values are kept.
	EnsureDefaults(ctx context.Context, kv map[string]string) error
}
