package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"library-backend/internal/domain/settings"

	"github.com/redis/go-redis/v9"
)

const settingsKey = "library:settings:v1"

// SettingsCache keeps the settings snapshot as JSON under one key.
type SettingsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSettingsCache(rdb *redis.Client, ttl time.Duration) *SettingsCache {
	return &SettingsCache{rdb: rdb, ttl: ttl}
}

func (c *SettingsCache) Get(ctx context.Context) (*settings.LibrarySettings, error) {
	raw, err := c.rdb.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s settings.LibrarySettings
	if err := json.Unmarshal(raw, &s); err != nil {
		// corrupt entry: drop it and treat as a miss
		_ = c.rdb.Del(ctx, settingsKey).Err()
		return nil, nil
	}
	return &s, nil
}

func (c *SettingsCache) Set(ctx context.Context, s settings.LibrarySettings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, settingsKey, raw, c.ttl).Err()
}

func (c *SettingsCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, settingsKey).Err()
}
