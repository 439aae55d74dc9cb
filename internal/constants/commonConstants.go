package constants

type (
	CachePrefix string
	ItemType    string
)

const (
	CachePrefixMatrix CachePrefix = "MATRIX_"

	// Tagged item types accepted by the mixed reorder endpoint
	ItemTypeMarker  ItemType = "marker"
	ItemTypeSubtour ItemType = "subtour"
)

const (
	// The provider's matrix endpoint bounds one request to 25 coordinates.
	MinMatrixMarkers = 2
	MaxMatrixMarkers = 25

	// Quota periods are calendar months in UTC, e.g. "2025-06".
	QuotaPeriodLayout = "2006-01"

	DefaultMonthlyQuota = 100
)
