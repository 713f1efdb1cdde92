package schedule

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrCourtNotFound = errors.New("court not found")
	ErrBadDateRange  = errors.New("start date after end date")
)
