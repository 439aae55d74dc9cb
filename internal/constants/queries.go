package constants

const (
	// UpsertQuotaCounter atomically creates or bumps the counter for a period.
	// A single statement so concurrent requests never lose an increment.
	UpsertQuotaCounter = `
	INSERT INTO quota_counters (period, request_count, last_request_at)
	VALUES ($1, 1, NOW())
	ON CONFLICT (period)
	DO UPDATE SET request_count = quota_counters.request_count + 1,
	              last_request_at = NOW()
	RETURNING period, request_count, last_request_at
	`

	GetQuotaCounterByPeriod = `
	SELECT period, request_count, last_request_at
	FROM quota_counters WHERE period = $1
	`
)
