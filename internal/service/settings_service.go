package service

import (
	"context"
	"fmt"
	"strconv"

	"gamestore-api/internal/model"
	"gamestore-api/internal/repository"

	"github.com/rs/zerolog"
)

// defaultVbucksRate is used when the setting row is absent.
const defaultVbucksRate = 1.0

// settingsService implements SettingsService.
type settingsService struct {
	settingsRepo repository.SettingsRepository
	logger       zerolog.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(settingsRepo repository.SettingsRepository, logger zerolog.Logger) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		logger:       logger.With().Str("service", "settings").Logger(),
	}
}

// VbucksRate returns the current V-Bucks exchange rate.
func (s *settingsService) VbucksRate(ctx context.Context) (float64, error) {
	setting, err := s.settingsRepo.GetSetting(ctx, model.SettingVbucksRate)
	if err != nil {
		return 0, fmt.Errorf("failed to read vbucks rate: %w", err)
	}
	if setting == nil {
		return defaultVbucksRate, nil
	}

	rate, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		s.logger.Error().
			Str("value", setting.Value).
			Msg("stored vbucks rate is not a number")
		return 0, fmt.Errorf("stored vbucks rate is not a number: %w", err)
	}

	return rate, nil
}

// UpdateVbucksRate sets a new rate and appends a history record.
func (s *settingsService) UpdateVbucksRate(ctx context.Context, rate float64, updatedBy *int64) error {
	if rate <= 0 {
		return model.ErrInvalidRate
	}

	value := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := s.settingsRepo.SetSetting(ctx, model.SettingVbucksRate, value); err != nil {
		return fmt.Errorf("failed to update vbucks rate: %w", err)
	}

	if err := s.settingsRepo.InsertRateHistory(ctx, rate, updatedBy); err != nil {
		return fmt.Errorf("failed to record vbucks rate change: %w", err)
	}

	s.logger.Info().Float64("rate", rate).Msg("vbucks rate updated")
	return nil
}

// RateHistory returns all recorded rate changes, most recent first.
func (s *settingsService) RateHistory(ctx context.Context) ([]model.RateHistoryEntry, error) {
	entries, err := s.settingsRepo.ListRateHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate history: %w", err)
	}
	return entries, nil
}
