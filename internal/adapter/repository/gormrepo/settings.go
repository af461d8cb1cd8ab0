package gormrepo

import (
	"context"
	"time"

	"library-backend/internal/domain/settings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct{ db *gorm.DB }

func NewSettingsRepository(db *gorm.DB) *SettingsRepository { return &SettingsRepository{db: db} }

func (r *SettingsRepository) All(ctx context.Context) (map[string]string, error) {
	var rows []settings.Setting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, kv map[string]string) error {
	rows := toRows(kv)
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
}

func (r *SettingsRepository) EnsureDefaults(ctx context.Context, kv map[string]string) error {
	rows := toRows(kv)
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func toRows(kv map[string]string) []settings.Setting {
	now := time.Now().UTC()
	rows := make([]settings.Setting, 0, len(kv))
	for k, v := range kv {
		rows = append(rows, settings.Setting{Key: k, Value: v, UpdatedAt: now})
	}
	return rows
}
