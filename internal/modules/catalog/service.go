package catalog

import (
	"context"
	"errors"
	"time"

	"courtbook/internal/domain"
	"courtbook/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	venues   VenueRepository
	sports   SportRepository
	courts   CourtRepository
	bookings BookingGuard
	audit    AuditSink
	log      *logrus.Logger

	now func() time.Time
}

func NewService(
	venues VenueRepository,
	sports SportRepository,
	courts CourtRepository,
	bookings BookingGuard,
	audit AuditSink,
	log *logrus.Logger,
) *Service {
	return &Service{
		venues:   venues,
		sports:   sports,
		courts:   courts,
		bookings: bookings,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) CreateVenue(ctx context.Context, ownerID int64, req CreateVenueRequest) (*domain.Venue, error) {
	if req.OpeningTime != "" {
		if _, err := domain.ParseTimeOfDay(req.OpeningTime); err != nil {
			return nil, ErrValidation
		}
	}
	if req.ClosingTime != "" {
		if _, err := domain.ParseTimeOfDay(req.ClosingTime); err != nil {
			return nil, ErrValidation
		}
	}

	v := &domain.Venue{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Phone:       req.Phone,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
		IsActive:    true,
	}
	if err := s.venues.Create(ctx, v); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, ownerID, "venue.create", "venue", v.ID, v.Name)
	return v, nil
}

func (s *Service) GetVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	v, err := s.venues.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *Service) ListVenues(ctx context.Context, limit, offset int) ([]domain.Venue, error) {
	return s.venues.ListActive(ctx, limit, offset)
}

func (s *Service) SetVenueActive(ctx context.Context, actorID, venueID int64, isAdmin bool, active bool) error {
	if err := s.requireVenueOwner(ctx, actorID, venueID, isAdmin); err != nil {
		return err
	}
	if err := s.venues.SetActive(ctx, venueID, active); err != nil {
		return err
	}
	s.audit.Record(ctx, actorID, "venue.set_active", "venue", venueID, active)
	return nil
}

func (s *Service) CreateSport(ctx context.Context, actorID int64, req CreateSportRequest) (*domain.Sport, error) {
	sp := &domain.Sport{Name: req.Name, Slug: req.Slug, IsActive: true}
	if err := s.sports.Create(ctx, sp); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, "sport.create", "sport", sp.ID, sp.Slug)
	return sp, nil
}

func (s *Service) ListSports(ctx context.Context) ([]domain.Sport, error) {
	return s.sports.ListActive(ctx)
}

// DeleteSport removes a sport unless any of its courts has an upcoming active
// booking.
func (s *Service) DeleteSport(ctx context.Context, actorID, sportID int64) error {
	if _, err := s.sports.GetByID(ctx, sportID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	today := s.now().UTC().Format(domain.DateLayout)
	busy, err := s.bookings.HasUpcomingActiveForSport(ctx, sportID, today)
	if err != nil {
		return err
	}
	if busy {
		return ErrHasActiveBookings
	}

	if err := s.sports.Delete(ctx, sportID); err != nil {
		return err
	}
	s.audit.Record(ctx, actorID, "sport.delete", "sport", sportID, nil)
	return nil
}

func (s *Service) CreateCourt(ctx context.Context, actorID int64, isAdmin bool, req CreateCourtRequest) (*domain.Court, error) {
	if err := s.requireVenueOwner(ctx, actorID, req.VenueID, isAdmin); err != nil {
		return nil, err
	}
	if _, err := s.sports.GetByID(ctx, req.SportID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c := &domain.Court{
		VenueID:     req.VenueID,
		SportID:     req.SportID,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		SurfaceType: domain.SurfaceType(req.SurfaceType),
		HourlyRate:  req.HourlyRate,
		IsActive:    true,
	}
	if err := s.courts.Create(ctx, c); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, "court.create", "court", c.ID, c.Name)
	return c, nil
}

func (s *Service) UpdateCourt(ctx context.Context, actorID, courtID int64, isAdmin bool, req UpdateCourtRequest) (*domain.Court, error) {
	c, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.requireVenueOwner(ctx, actorID, c.VenueID, isAdmin); err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Code != nil {
		c.Code = *req.Code
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.SurfaceType != nil {
		c.SurfaceType = domain.SurfaceType(*req.SurfaceType)
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return nil, ErrValidation
		}
		c.HourlyRate = *req.HourlyRate
	}

	if err := s.courts.Update(ctx, c); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actorID, "court.update", "court", c.ID, nil)
	return c, nil
}

func (s *Service) GetCourt(ctx context.Context, id int64) (*domain.Court, error) {
	c, err := s.courts.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *Service) ListCourts(ctx context.Context, q CourtListQuery) ([]domain.Court, int64, error) {
	return s.courts.ListActive(ctx, repository.CourtFilter{
		VenueID:  q.VenueID,
		SportID:  q.SportID,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Search:   q.Search,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
}

// DeactivateCourt hides the court from listings without touching history.
// The safe alternative to deletion when bookings exist.
func (s *Service) DeactivateCourt(ctx context.Context, actorID, courtID int64, isAdmin bool) error {
	c, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.requireVenueOwner(ctx, actorID, c.VenueID, isAdmin); err != nil {
		return err
	}
	if err := s.courts.SetActive(ctx, courtID, false); err != nil {
		return err
	}
	s.audit.Record(ctx, actorID, "court.deactivate", "court", courtID, nil)
	return nil
}

// DeleteCourt removes a court, refused while any non-cancelled booking dated
// today or later exists for it.
func (s *Service) DeleteCourt(ctx context.Context, actorID, courtID int64, isAdmin bool) error {
	c, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.requireVenueOwner(ctx, actorID, c.VenueID, isAdmin); err != nil {
		return err
	}

	today := s.now().UTC().Format(domain.DateLayout)
	busy, err := s.bookings.HasUpcomingActiveForCourt(ctx, courtID, today)
	if err != nil {
		return err
	}
	if busy {
		return ErrHasActiveBookings
	}

	if err := s.courts.Delete(ctx, courtID); err != nil {
		return err
	}
	s.audit.Record(ctx, actorID, "court.delete", "court", courtID, nil)
	return nil
}

func (s *Service) CourtStats(ctx context.Context, actorID, courtID int64, isAdmin bool, fromDate, toDate string) (*repository.CourtStats, error) {
	if _, err := domain.ParseDate(fromDate); err != nil {
		return nil, ErrValidation
	}
	if _, err := domain.ParseDate(toDate); err != nil {
		return nil, ErrValidation
	}

	c, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.requireVenueOwner(ctx, actorID, c.VenueID, isAdmin); err != nil {
		return nil, err
	}
	return s.bookings.StatsForCourt(ctx, courtID, fromDate, toDate)
}

func (s *Service) requireVenueOwner(ctx context.Context, actorID, venueID int64, isAdmin bool) error {
	if isAdmin {
		return nil
	}
	ownerID, err := s.venues.GetOwnerID(ctx, venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if ownerID == 0 {
		return ErrNotFound
	}
	if ownerID != actorID {
		return ErrForbidden
	}
	return nil
}
