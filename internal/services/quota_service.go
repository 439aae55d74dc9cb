package services

import (
	"context"
	"fmt"
	"time"

	"roamio/cartographer/internal/constants"
	"roamio/cartographer/internal/logging"
	"roamio/cartographer/internal/models/dtos"
	"roamio/cartographer/internal/models/entities"
)

// QuotaStore persists per-period request counters
type QuotaStore interface {
	// IncrementAndGet atomically creates-or-increments the counter for
	// the period and returns the updated row.
	IncrementAndGet(ctx context.Context, period string) (*entities.QuotaCounter, error)
	// GetByPeriod reads without side effects; nil when no row exists yet.
	GetByPeriod(ctx context.Context, period string) (*entities.QuotaCounter, error)
}

// QuotaService enforces the monthly ceiling on routing-provider calls.
// The ceiling is shared across every feature that talks to the provider:
// search, routing and matrix requests all count against the same period.
type QuotaService struct {
	store QuotaStore
	limit int
	// now is swappable for tests
	now func() time.Time
}

func NewQuotaService(store QuotaStore, limit int) *QuotaService {
	if limit <= 0 {
		limit = constants.DefaultMonthlyQuota
	}
	return &QuotaService{
		store: store,
		limit: limit,
		now:   time.Now,
	}
}

// CurrentPeriod returns the active calendar-month key, e.g. "2025-06"
func (s *QuotaService) CurrentPeriod() string {
	return s.now().UTC().Format(constants.QuotaPeriodLayout)
}

// CheckQuota fails with a quota-exceeded ServiceError when the current
// period's count has reached the limit. Read-only and safe to call
// repeatedly; callers invoke it before attempting the external call and
// still handle that call failing on its own.
func (s *QuotaService) CheckQuota(ctx context.Context) error {
	period := s.CurrentPeriod()

	counter, err := s.store.GetByPeriod(ctx, period)
	if err != nil {
		return fmt.Errorf("failed to read quota counter: %w", err)
	}

	count := 0
	if counter != nil {
		count = counter.RequestCount
	}

	if count >= s.limit {
		logging.Warn("Routing quota exhausted",
			"period", period,
			"count", count,
			"limit", s.limit,
		)
		return &ServiceError{
			Code:    constants.ErrCodeQuotaExceeded,
			Message: constants.GetErrorMessage(constants.ErrCodeQuotaExceeded),
			Usage:   s.statsFrom(period, count),
		}
	}
	return nil
}

// RecordRequest counts one external provider call. Called once per
// successful call, not once per logical user action: a multi-category
// search that issues N provider calls records N times.
func (s *QuotaService) RecordRequest(ctx context.Context) error {
	period := s.CurrentPeriod()

	counter, err := s.store.IncrementAndGet(ctx, period)
	if err != nil {
		return fmt.Errorf("failed to increment quota counter: %w", err)
	}

	logging.Debug("Recorded routing provider request",
		"period", period,
		"count", counter.RequestCount,
		"limit", s.limit,
	)
	return nil
}

// UsageStats returns the current period's usage for display
func (s *QuotaService) UsageStats(ctx context.Context) (*dtos.UsageStats, error) {
	period := s.CurrentPeriod()

	counter, err := s.store.GetByPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to read quota counter: %w", err)
	}

	count := 0
	if counter != nil {
		count = counter.RequestCount
	}
	return s.statsFrom(period, count), nil
}

func (s *QuotaService) statsFrom(period string, count int) *dtos.UsageStats {
	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &dtos.UsageStats{
		Period:    period,
		Count:     count,
		Limit:     s.limit,
		Remaining: remaining,
	}
}
