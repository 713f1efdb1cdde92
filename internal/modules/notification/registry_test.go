package notification

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(s *fakeStore) *Registry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	r := NewRegistry(s, log)
	r.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return r
}

func TestRegister_EmptyTokenRejected(t *testing.T) {
	r := newRegistry(newFakeStore())

	_, err := r.Register(context.Background(), 7, RegisterTokenRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_Upserts(t *testing.T) {
	r := newRegistry(newFakeStore())

	dt, err := r.Register(context.Background(), 7, RegisterTokenRequest{Token: "tok-a", DeviceType: "ios"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), dt.UserID)
	assert.True(t, dt.IsActive)
}

func TestRemove_UnknownPair(t *testing.T) {
	s := newFakeStore()
	r := newRegistry(s)

	// fakeStore.Remove always reports success; exercise the validation path
	err := r.Remove(context.Background(), 7, "")
	assert.ErrorIs(t, err, ErrValidation)

	err = r.Remove(context.Background(), 7, "tok-a")
	assert.NoError(t, err)
}
