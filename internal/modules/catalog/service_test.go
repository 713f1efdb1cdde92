package catalog

import (
	"context"
	"testing"
	"time"

	"courtbook/internal/domain"
	"courtbook/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVenueRepository struct {
	mock.Mock
}

func (m *MockVenueRepository) Create(ctx context.Context, v *domain.Venue) error {
	args := m.Called(ctx, v)
	if args.Error(0) == nil {
		v.ID = 11
	}
	return args.Error(0)
}

func (m *MockVenueRepository) GetByID(ctx context.Context, id int64) (*domain.Venue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Venue), args.Error(1)
}

func (m *MockVenueRepository) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVenueRepository) ListActive(ctx context.Context, limit, offset int) ([]domain.Venue, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Venue), args.Error(1)
}

func (m *MockVenueRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

type MockSportRepository struct {
	mock.Mock
}

func (m *MockSportRepository) Create(ctx context.Context, s *domain.Sport) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSportRepository) GetByID(ctx context.Context, id int64) (*domain.Sport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sport), args.Error(1)
}

func (m *MockSportRepository) ListActive(ctx context.Context) ([]domain.Sport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sport), args.Error(1)
}

func (m *MockSportRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCourtRepo struct {
	mock.Mock
}

func (m *MockCourtRepo) Create(ctx context.Context, c *domain.Court) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourtRepo) Update(ctx context.Context, c *domain.Court) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourtRepo) GetByID(ctx context.Context, id int64) (*domain.Court, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Court), args.Error(1)
}

func (m *MockCourtRepo) ListActive(ctx context.Context, f repository.CourtFilter) ([]domain.Court, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Court), args.Get(1).(int64), args.Error(2)
}

func (m *MockCourtRepo) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockCourtRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBookingGuard struct {
	mock.Mock
}

func (m *MockBookingGuard) HasUpcomingActiveForCourt(ctx context.Context, courtID int64, today string) (bool, error) {
	args := m.Called(ctx, courtID, today)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingGuard) HasUpcomingActiveForSport(ctx context.Context, sportID int64, today string) (bool, error) {
	args := m.Called(ctx, sportID, today)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingGuard) StatsForCourt(ctx context.Context, courtID int64, fromDate, toDate string) (*repository.CourtStats, error) {
	args := m.Called(ctx, courtID, fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CourtStats), args.Error(1)
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, actorID int64, action, entity string, entityID int64, details any) {
}

type fixture struct {
	venues   *MockVenueRepository
	sports   *MockSportRepository
	courts   *MockCourtRepo
	bookings *MockBookingGuard
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		venues:   new(MockVenueRepository),
		sports:   new(MockSportRepository),
		courts:   new(MockCourtRepo),
		bookings: new(MockBookingGuard),
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	f.svc = NewService(f.venues, f.sports, f.courts, f.bookings, nopAudit{}, log)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return f
}

func TestDeleteCourt_BlockedByUpcomingBooking(t *testing.T) {
	f := newFixture()
	f.courts.On("GetByID", mock.Anything, int64(3)).Return(&domain.Court{ID: 3, VenueID: 11}, nil)
	f.venues.On("GetOwnerID", mock.Anything, int64(11)).Return(int64(7), nil)
	f.bookings.On("HasUpcomingActiveForCourt", mock.Anything, int64(3), "2026-03-10").Return(true, nil)

	err := f.svc.DeleteCourt(context.Background(), 7, 3, false)
	assert.ErrorIs(t, err, ErrHasActiveBookings)
	f.courts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteCourt_AllowedWhenClear(t *testing.T) {
	f := newFixture()
	f.courts.On("GetByID", mock.Anything, int64(3)).Return(&domain.Court{ID: 3, VenueID: 11}, nil)
	f.venues.On("GetOwnerID", mock.Anything, int64(11)).Return(int64(7), nil)
	f.bookings.On("HasUpcomingActiveForCourt", mock.Anything, int64(3), "2026-03-10").Return(false, nil)
	f.courts.On("Delete", mock.Anything, int64(3)).Return(nil)

	err := f.svc.DeleteCourt(context.Background(), 7, 3, false)
	require.NoError(t, err)
	f.courts.AssertExpectations(t)
}

func TestDeleteCourt_NotOwner(t *testing.T) {
	f := newFixture()
	f.courts.On("GetByID", mock.Anything, int64(3)).Return(&domain.Court{ID: 3, VenueID: 11}, nil)
	f.venues.On("GetOwnerID", mock.Anything, int64(11)).Return(int64(99), nil)

	err := f.svc.DeleteCourt(context.Background(), 7, 3, false)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteSport_BlockedByUpcomingBooking(t *testing.T) {
	f := newFixture()
	f.sports.On("GetByID", mock.Anything, int64(2)).Return(&domain.Sport{ID: 2}, nil)
	f.bookings.On("HasUpcomingActiveForSport", mock.Anything, int64(2), "2026-03-10").Return(true, nil)

	err := f.svc.DeleteSport(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrHasActiveBookings)
	f.sports.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeactivateCourt_NoGuardNeeded(t *testing.T) {
	f := newFixture()
	f.courts.On("GetByID", mock.Anything, int64(3)).Return(&domain.Court{ID: 3, VenueID: 11}, nil)
	f.venues.On("GetOwnerID", mock.Anything, int64(11)).Return(int64(7), nil)
	f.courts.On("SetActive", mock.Anything, int64(3), false).Return(nil)

	err := f.svc.DeactivateCourt(context.Background(), 7, 3, false)
	require.NoError(t, err)
	// Deactivation never consults the ledger
	f.bookings.AssertNotCalled(t, "HasUpcomingActiveForCourt", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateVenue_BadHours(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateVenue(context.Background(), 7, CreateVenueRequest{
		Name:        "Arena",
		Address:     "Main st 1",
		OpeningTime: "8am",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdminBypassesOwnership(t *testing.T) {
	f := newFixture()
	f.courts.On("GetByID", mock.Anything, int64(3)).Return(&domain.Court{ID: 3, VenueID: 11}, nil)
	f.courts.On("SetActive", mock.Anything, int64(3), false).Return(nil)

	err := f.svc.DeactivateCourt(context.Background(), 1, 3, true)
	require.NoError(t, err)
	f.venues.AssertNotCalled(t, "GetOwnerID", mock.Anything, mock.Anything)
}
