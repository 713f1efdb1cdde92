package catalog

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("resource belongs to another owner")
	ErrHasActiveBookings = errors.New("resource has upcoming active bookings")
)
