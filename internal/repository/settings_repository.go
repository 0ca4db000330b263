package repository

import (
	"context"
	"errors"
	"fmt"

	"gamestore-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// settingsRepository implements the SettingsRepository interface using PostgreSQL.
type settingsRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(db DB, logger zerolog.Logger) SettingsRepository {
	return &settingsRepository{
		db:     db,
		logger: logger.With().Str("repository", "settings").Logger(),
	}
}

// GetSetting retrieves a setting by key.
func (r *settingsRepository) GetSetting(ctx context.Context, key string) (*model.Setting, error) {
	query := `SELECT key, value, created_at, updated_at FROM settings WHERE key = $1`

	var setting model.Setting
	err := r.db.QueryRow(ctx, query, key).Scan(
		&setting.Key,
		&setting.Value,
		&setting.CreatedAt,
		&setting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("key", key).Msg("setting not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("key", key).Msg("failed to query setting")
		return nil, fmt.Errorf("failed to query setting: %w", err)
	}

	return &setting, nil
}

// SetSetting upserts a setting value.
func (r *settingsRepository) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query, key, value)
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to upsert setting")
		return fmt.Errorf("failed to upsert setting: %w", err)
	}

	return nil
}

// InsertRateHistory appends a V-Bucks rate change record.
func (r *settingsRepository) InsertRateHistory(ctx context.Context, rate float64, createdBy *int64) error {
	query := `
		INSERT INTO vbucks_rate_history (rate, created_by, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := r.db.Exec(ctx, query, rate, createdBy)
	if err != nil {
		r.logger.Error().Err(err).Float64("rate", rate).Msg("failed to insert rate history")
		return fmt.Errorf("failed to insert rate history: %w", err)
	}

	return nil
}

// ListRateHistory retrieves all rate changes, most recent first.
func (r *settingsRepository) ListRateHistory(ctx context.Context) ([]model.RateHistoryEntry, error) {
	query := `
		SELECT id, rate, created_by, created_at
		FROM vbucks_rate_history
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query rate history")
		return nil, fmt.Errorf("failed to query rate history: %w", err)
	}
	defer rows.Close()

	var entries []model.RateHistoryEntry
	for rows.Next() {
		var entry model.RateHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.Rate, &entry.CreatedBy, &entry.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan rate history row")
			return nil, fmt.Errorf("failed to scan rate history: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating rate history rows")
		return nil, fmt.Errorf("error iterating rate history: %w", err)
	}

	return entries, nil
}
