package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"courtbook/internal/database"
	"courtbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlotRepo(t *testing.T) *TimeSlotRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewTimeSlotRepository(db)
}

func slot(courtID int64, date, start, end string) domain.TimeSlot {
	return domain.TimeSlot{
		CourtID:   courtID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Price:     60,
		Status:    domain.SlotAvailable,
	}
}

func TestBulkInsert_SkipsExisting(t *testing.T) {
	repo := newSlotRepo(t)
	ctx := context.Background()

	n, err := repo.BulkInsert(ctx, []domain.TimeSlot{
		slot(1, "2026-06-10", "10:00:00", "11:30:00"),
		slot(1, "2026-06-10", "11:30:00", "13:00:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Book one slot, then regenerate over the same window.
	require.NoError(t, repo.MarkBookedInRange(ctx, 1, "2026-06-10", "10:00:00", "11:30:00"))

	n, err = repo.BulkInsert(ctx, []domain.TimeSlot{
		slot(1, "2026-06-10", "10:00:00", "11:30:00"),
		slot(1, "2026-06-10", "11:30:00", "13:00:00"),
		slot(1, "2026-06-10", "13:00:00", "14:30:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The booked slot was not reset to available.
	available, err := repo.ListAvailable(ctx, 1, "2026-06-10")
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "11:30:00", available[0].StartTime)
	assert.Equal(t, "13:00:00", available[1].StartTime)
}

func TestMarkAndReleaseBookedInRange(t *testing.T) {
	repo := newSlotRepo(t)
	ctx := context.Background()

	_, err := repo.BulkInsert(ctx, []domain.TimeSlot{
		slot(1, "2026-06-10", "10:00:00", "11:30:00"),
		slot(1, "2026-06-10", "11:30:00", "13:00:00"),
		slot(1, "2026-06-10", "13:00:00", "14:30:00"),
	})
	require.NoError(t, err)

	// A booking covering 10:00-13:00 flips the first two slots only.
	require.NoError(t, repo.MarkBookedInRange(ctx, 1, "2026-06-10", "10:00:00", "13:00:00"))

	available, err := repo.ListAvailable(ctx, 1, "2026-06-10")
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "13:00:00", available[0].StartTime)

	require.NoError(t, repo.ReleaseBookedInRange(ctx, 1, "2026-06-10", "10:00:00", "13:00:00"))
	available, err = repo.ListAvailable(ctx, 1, "2026-06-10")
	require.NoError(t, err)
	assert.Len(t, available, 3)
}

func TestLastGeneratedDate(t *testing.T) {
	repo := newSlotRepo(t)
	ctx := context.Background()

	last, err := repo.LastGeneratedDate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "", last)

	_, err = repo.BulkInsert(ctx, []domain.TimeSlot{
		slot(1, "2026-06-10", "10:00:00", "11:30:00"),
		slot(1, "2026-06-12", "10:00:00", "11:30:00"),
		slot(2, "2026-06-20", "10:00:00", "11:30:00"),
	})
	require.NoError(t, err)

	last, err = repo.LastGeneratedDate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "2026-06-12", last)
}
