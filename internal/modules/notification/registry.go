package notification

import (
	"context"
	"time"

	"courtbook/internal/domain"

	"github.com/sirupsen/logrus"
)

// Registry manages the device-token lifecycle: register on login, refresh on
// app start, remove on logout. Provider-reported dead tokens are deactivated
// by the dispatcher, never deleted.
type Registry struct {
	tokens DeviceTokenRepository
	log    *logrus.Logger
	now    func() time.Time
}

func NewRegistry(tokens DeviceTokenRepository, log *logrus.Logger) *Registry {
	return &Registry{tokens: tokens, log: log, now: time.Now}
}

// Register upserts the (user, token) pair. Re-registering an existing token
// reactivates it and refreshes the device metadata, so retries and app
// restarts are harmless.
func (r *Registry) Register(ctx context.Context, userID int64, req RegisterTokenRequest) (*domain.DeviceToken, error) {
	if req.Token == "" {
		return nil, ErrValidation
	}
	return r.tokens.Upsert(ctx, userID, req.Token, req.DeviceType, req.DeviceName, r.now().UTC())
}

// Remove drops the user's registration of the token. Returns ErrNotFound when
// the pair was never registered.
func (r *Registry) Remove(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return ErrValidation
	}
	removed, err := r.tokens.Remove(ctx, userID, token)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (r *Registry) ListForUser(ctx context.Context, userID int64) ([]domain.DeviceToken, error) {
	return r.tokens.ListByUser(ctx, userID)
}
