package constants

// Error codes for the routing and tour subsystem.
// These are attached to typed errors at the point of detection and mapped
// to HTTP statuses at the request boundary.

// Routing provider errors
const (
	ErrCodeInvalidArgument     = "INVALID_ARGUMENT"
	ErrCodeProviderUnavailable = "ROUTING_PROVIDER_UNAVAILABLE"
	ErrCodeProviderError       = "ROUTING_PROVIDER_ERROR"
	ErrCodeQuotaExceeded       = "QUOTA_EXCEEDED"
)

// Business rule violations
const (
	ErrCodeCrossTripReference = "CROSS_TRIP_REFERENCE"
	ErrCodeDuplicateTourName  = "DUPLICATE_TOUR_NAME"
	ErrCodeMarkerNotInTour    = "MARKER_NOT_IN_TOUR"
	ErrCodeSubtourNotInTour   = "SUBTOUR_NOT_IN_TOUR"
	ErrCodeUnknownItemType    = "UNKNOWN_ITEM_TYPE"
)

// Generic resource errors
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

// User-facing messages. The UI keys off exact wording for several of these,
// so they must stay distinguishable and stable.
var ErrorMessages = map[string]string{
	ErrCodeInvalidArgument:     "The request data is invalid",
	ErrCodeProviderUnavailable: "The routing provider is not configured",
	ErrCodeProviderError:       "The routing provider request failed",
	ErrCodeQuotaExceeded:       "Monthly routing request quota exceeded",

	ErrCodeCrossTripReference: "Marker and tour belong to different trips",
	ErrCodeDuplicateTourName:  "A tour with this name already exists under the same parent",
	ErrCodeMarkerNotInTour:    "Marker is not part of this tour",
	ErrCodeSubtourNotInTour:   "Sub-tour does not belong to this tour",
	ErrCodeUnknownItemType:    "Unknown item type, expected marker or subtour",

	ErrCodeNotFound:     "The requested resource was not found",
	ErrCodeForbidden:    "You do not have access to this resource",
	ErrCodeInvalidInput: "The request data is invalid",
}

// Fixed sort-endpoint messages
const (
	MsgTourTooFewMarkers    = "Tour must have at least 2 markers to sort"
	MsgTourTooManyMarkers   = "Tour has too many markers. Maximum is 25 markers for automatic sorting."
	MsgAtLeastTwoMarkers    = "At least 2 markers are required"
	MsgTooManyMarkers       = "Too many markers"
	MsgTokenNotConfigured   = "access token not configured"
)

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
