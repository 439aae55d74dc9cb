package services

import (
	"errors"

	"roamio/cartographer/internal/models/dtos"
)

// ServiceError is a domain failure carrying a stable error code for the
// HTTP boundary. Business-rule violations, quota refusals and argument
// problems all surface through this type; infrastructure errors stay
// plain errors.
type ServiceError struct {
	Code    string
	Message string
	// Usage is attached to quota refusals so the UI can explain when
	// the ceiling resets.
	Usage *dtos.UsageStats
}

func (e *ServiceError) Error() string {
	return e.Message
}

// AsServiceError unwraps err into a *ServiceError if it is one
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
