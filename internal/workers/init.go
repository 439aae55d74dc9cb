package workers

import (
	"roamio/cartographer/internal/metrics"
	"roamio/cartographer/internal/services"
)

type WorkersContainer struct {
	QuotaGauge *QuotaGaugeWorker
}

func InitWorkers(quota *services.QuotaService, metricsReg *metrics.MetricsRegistry) *WorkersContainer {
	qg := NewQuotaGaugeWorker(quota, metricsReg)

	go qg.Start()

	return &WorkersContainer{
		QuotaGauge: qg,
	}
}
