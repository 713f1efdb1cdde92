package booking

import "errors"

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("booking not found")
	ErrCourtNotFound  = errors.New("court not found")
	ErrConflict       = errors.New("requested window conflicts with an existing booking")
	ErrNotCancellable = errors.New("booking can no longer be cancelled")
	ErrForbidden      = errors.New("booking belongs to another user")
)
