package notification

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("notification not found")
	ErrNoTargets  = errors.New("no active device tokens for the target population")
	ErrNotPending = errors.New("notification is not pending")
)

// ProviderError wraps a push-provider failure for a single token. Permanent
// failures (unregistered, sender mismatch, malformed token) cause token
// deactivation; transient ones only count as failed.
type ProviderError struct {
	Permanent bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("provider error (%s): %v", kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsPermanentTokenError reports whether err marks the token as permanently
// invalid.
func IsPermanentTokenError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Permanent
}
