package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"courtbook/internal/database"
	"courtbook/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *BookingRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewBookingRepository(db)
}

func testBooking(courtID int64, date, start, end string) *domain.Booking {
	return &domain.Booking{
		UserID:        1,
		CourtID:       courtID,
		BookingDate:   date,
		StartTime:     start,
		EndTime:       end,
		TotalAmount:   75,
		FinalAmount:   75,
		Status:        domain.BookingConfirmed,
		PaymentStatus: domain.PaymentPending,
	}
}

func TestCreateWithNoOverlap_RejectsConflict(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	first := testBooking(1, "2026-06-10", "10:00:00", "11:30:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, first, now))
	assert.Equal(t, "BK-2026-000001", first.BookingNumber)

	clash := testBooking(1, "2026-06-10", "11:00:00", "12:30:00")
	err := repo.CreateWithNoOverlap(ctx, clash, now)
	assert.ErrorIs(t, err, ErrOverlap)
}

func TestCreateWithNoOverlap_BackToBackAllowed(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateWithNoOverlap(ctx, testBooking(1, "2026-06-10", "10:00:00", "11:30:00"), now))

	next := testBooking(1, "2026-06-10", "11:30:00", "13:00:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, next, now))
	assert.Equal(t, "BK-2026-000002", next.BookingNumber)
}

func TestCreateWithNoOverlap_OtherCourtAndDateIgnored(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateWithNoOverlap(ctx, testBooking(1, "2026-06-10", "10:00:00", "11:30:00"), now))
	require.NoError(t, repo.CreateWithNoOverlap(ctx, testBooking(2, "2026-06-10", "10:00:00", "11:30:00"), now))
	require.NoError(t, repo.CreateWithNoOverlap(ctx, testBooking(1, "2026-06-11", "10:00:00", "11:30:00"), now))
}

func TestCreateWithNoOverlap_CancelledDoesNotBlock(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	first := testBooking(1, "2026-06-10", "10:00:00", "11:30:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, first, now))
	require.NoError(t, repo.Cancel(ctx, first.ID, "change of plans", now))

	again := testBooking(1, "2026-06-10", "10:00:00", "11:30:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, again, now))

	cancelled, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, cancelled.Status)
	assert.Equal(t, "change of plans", cancelled.CancellationReason)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestBookingNumber_SequencePerYear(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	in2026 := time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC)
	in2027 := time.Date(2027, 1, 1, 1, 0, 0, 0, time.UTC)

	a := testBooking(1, "2027-01-05", "10:00:00", "11:00:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, a, in2026))
	b := testBooking(1, "2027-01-05", "11:00:00", "12:00:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, b, in2026))
	c := testBooking(1, "2027-01-05", "12:00:00", "13:00:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, c, in2027))

	assert.Equal(t, "BK-2026-000001", a.BookingNumber)
	assert.Equal(t, "BK-2026-000002", b.BookingNumber)
	// The counter restarts when the clock crosses into a new year.
	assert.Equal(t, "BK-2027-000001", c.BookingNumber)
}

func TestHasOverlap(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateWithNoOverlap(ctx, testBooking(1, "2026-06-10", "10:00:00", "11:30:00"), now))

	got, err := repo.HasOverlap(ctx, 1, "2026-06-10", "11:00:00", "12:00:00")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = repo.HasOverlap(ctx, 1, "2026-06-10", "11:30:00", "12:30:00")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestHasUpcomingActiveForCourt(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	b := testBooking(1, "2026-06-10", "10:00:00", "11:30:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, b, now))

	got, err := repo.HasUpcomingActiveForCourt(ctx, 1, "2026-06-01")
	require.NoError(t, err)
	assert.True(t, got)

	// Past-only bookings do not block.
	got, err = repo.HasUpcomingActiveForCourt(ctx, 1, "2026-06-11")
	require.NoError(t, err)
	assert.False(t, got)

	require.NoError(t, repo.Cancel(ctx, b.ID, "", now))
	got, err = repo.HasUpcomingActiveForCourt(ctx, 1, "2026-06-01")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestStatsForCourt(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	a := testBooking(1, "2026-06-10", "10:00:00", "11:00:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, a, now))
	b := testBooking(1, "2026-06-10", "11:00:00", "12:00:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, b, now))
	require.NoError(t, repo.Cancel(ctx, b.ID, "", now))

	stats, err := repo.StatsForCourt(ctx, 1, "2026-06-01", "2026-06-30")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalBookings)
	assert.EqualValues(t, 1, stats.ConfirmedBookings)
	assert.EqualValues(t, 1, stats.CancelledBookings)
	assert.Equal(t, 75.0, stats.TotalRevenue)
}

func TestMapUniqueViolation(t *testing.T) {
	// A duplicate key on bookings can only be a booking_number collision
	// between concurrent transactions on different courts. It must surface
	// as the retryable sentinel, never as an overlap conflict.
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_bookings_booking_number"}
	err := mapUniqueViolation(dup)
	assert.ErrorIs(t, err, errNumberTaken)
	assert.NotErrorIs(t, err, ErrOverlap)

	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapUniqueViolation(plain))
}

func TestCreateWithNoOverlap_SequenceResumesAcrossCourts(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	// The number sequence is global: the per-court serialization must not
	// hand two courts the same number when creates interleave.
	a := testBooking(1, "2026-06-10", "10:00:00", "11:00:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, a, now))
	b := testBooking(2, "2026-06-10", "10:00:00", "11:00:00")
	require.NoError(t, repo.CreateWithNoOverlap(ctx, b, now))

	assert.Equal(t, "BK-2026-000001", a.BookingNumber)
	assert.Equal(t, "BK-2026-000002", b.BookingNumber)
}
