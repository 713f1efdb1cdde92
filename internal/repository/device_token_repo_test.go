package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"courtbook/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenRepo(t *testing.T) *DeviceTokenRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewDeviceTokenRepository(db)
}

func TestUpsert_Idempotent(t *testing.T) {
	repo := newTokenRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	first, err := repo.Upsert(ctx, 1, "tok-a", "ios", "iPhone", now)
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	// Same pair again: no second row, metadata refreshed.
	later := now.Add(time.Hour)
	second, err := repo.Upsert(ctx, 1, "tok-a", "ios", "iPhone 15", later)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "iPhone 15", second.DeviceName)

	tokens, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, tokens, 1)
}

func TestUpsert_ReactivatesDeactivatedToken(t *testing.T) {
	repo := newTokenRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	dt, err := repo.Upsert(ctx, 1, "tok-a", "android", "", now)
	require.NoError(t, err)
	require.NoError(t, repo.DeactivateByToken(ctx, "tok-a"))

	tokens, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	revived, err := repo.Upsert(ctx, 1, "tok-a", "android", "", now)
	require.NoError(t, err)
	assert.Equal(t, dt.ID, revived.ID)
	assert.True(t, revived.IsActive)
}

func TestRemove(t *testing.T) {
	repo := newTokenRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.Upsert(ctx, 1, "tok-a", "", "", now)
	require.NoError(t, err)

	removed, err := repo.Remove(ctx, 1, "tok-a")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, 1, "tok-a")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestActiveTokensForUsers(t *testing.T) {
	repo := newTokenRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.Upsert(ctx, 1, "tok-a", "", "", now)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, 1, "tok-b", "", "", now)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, 2, "tok-c", "", "", now)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, 3, "tok-d", "", "", now)
	require.NoError(t, err)
	require.NoError(t, repo.DeactivateByToken(ctx, "tok-b"))

	tokens, err := repo.ActiveTokensForUsers(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tok-a", "tok-c"}, tokens)

	all, err := repo.ActiveTokens(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tok-a", "tok-c", "tok-d"}, all)

	none, err := repo.ActiveTokensForUsers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
