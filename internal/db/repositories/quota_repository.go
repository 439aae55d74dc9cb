package repositories

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"roamio/cartographer/internal/constants"
	"roamio/cartographer/internal/models/entities"
)

// QuotaRepository persists the per-period routing request counters. The
// increment is a single upsert statement so concurrent requests cannot
// lose updates.
type QuotaRepository struct {
	db *sqlx.DB
}

func NewQuotaRepository(db *sqlx.DB) *QuotaRepository {
	return &QuotaRepository{db}
}

// IncrementAndGet bumps the counter for the period, creating the row on
// first use, and returns the updated row.
func (r *QuotaRepository) IncrementAndGet(ctx context.Context, period string) (*entities.QuotaCounter, error) {
	var counter entities.QuotaCounter

	err := r.db.QueryRowxContext(ctx, constants.UpsertQuotaCounter, period).StructScan(&counter)
	if err != nil {
		return nil, err
	}

	return &counter, nil
}

// GetByPeriod reads the counter for a period without side effects.
// Returns nil, nil when no request has been made in the period yet.
func (r *QuotaRepository) GetByPeriod(ctx context.Context, period string) (*entities.QuotaCounter, error) {
	var counter entities.QuotaCounter

	err := r.db.QueryRowxContext(ctx, constants.GetQuotaCounterByPeriod, period).StructScan(&counter)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &counter, nil
}
