package workers

import (
	"context"
	"time"

	"roamio/cartographer/internal/logging"
	"roamio/cartographer/internal/metrics"
	"roamio/cartographer/internal/services"
)

// QuotaGaugeWorker refreshes the quota usage gauge from the counter
// table, so dashboards stay current even when no requests arrive.
type QuotaGaugeWorker struct {
	quota      *services.QuotaService
	metricsReg *metrics.MetricsRegistry
	interval   time.Duration
}

func NewQuotaGaugeWorker(quota *services.QuotaService, metricsReg *metrics.MetricsRegistry) *QuotaGaugeWorker {
	return &QuotaGaugeWorker{
		quota:      quota,
		metricsReg: metricsReg,
		interval:   5 * time.Minute,
	}
}

func (w *QuotaGaugeWorker) Start() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh()

	for range ticker.C {
		w.refresh()
	}
}

func (w *QuotaGaugeWorker) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := w.quota.UsageStats(ctx)
	if err != nil {
		logging.Warn("Quota gauge refresh failed", "error", err)
		return
	}
	w.metricsReg.QuotaUsage.Set(float64(stats.Count))
}
