package booking

import (
	"context"
	"errors"
	"time"

	"courtbook/internal/domain"
	"courtbook/internal/modules/schedule"
	"courtbook/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	bookings BookingRepository
	courts   CourtRepository
	slots    SlotRepository
	pricing  PriceResolver
	events   EventPublisher
	audit    AuditSink
	log      *logrus.Logger

	now func() time.Time
}

func NewService(
	bookings BookingRepository,
	courts CourtRepository,
	slots SlotRepository,
	pricing PriceResolver,
	events EventPublisher,
	audit AuditSink,
	log *logrus.Logger,
) *Service {
	return &Service{
		bookings: bookings,
		courts:   courts,
		slots:    slots,
		pricing:  pricing,
		events:   events,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// CreateBooking validates the window, prices it, and commits it through the
// ledger's atomic overlap check. The slot read model and the event stream are
// updated after commit; their failures are logged, not surfaced, because the
// bookings table is the source of truth.
func (s *Service) CreateBooking(ctx context.Context, userID int64, req CreateBookingRequest) (*domain.Booking, error) {
	if err := s.validateWindow(req.BookingDate, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	court, err := s.courts.GetByID(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	if !court.IsActive {
		return nil, ErrCourtNotFound
	}

	price, err := s.pricing.PriceFor(ctx, req.CourtID, req.BookingDate, req.StartTime)
	if err != nil {
		return nil, err
	}

	startMin, _ := domain.ParseTimeOfDay(req.StartTime)
	endMin, _ := domain.ParseTimeOfDay(req.EndTime)
	total := schedule.SlotPrice(price.PricePerHour, endMin-startMin)

	now := s.now().UTC()
	b := &domain.Booking{
		UserID:        userID,
		CourtID:       req.CourtID,
		BookingDate:   req.BookingDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		TotalAmount:   total,
		FinalAmount:   total,
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentPending,
		Notes:         req.Notes,
	}

	if err := s.bookings.CreateWithNoOverlap(ctx, b, now); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := s.slots.MarkBookedInRange(ctx, b.CourtID, b.BookingDate, b.StartTime, b.EndTime); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Error("slot read model update failed")
	}

	s.audit.Record(ctx, userID, "booking.create", "booking", b.ID, b.BookingNumber)
	s.publish(ctx, EventBookingCreated, b, now)
	return b, nil
}

// IsAvailable runs the advisory overlap check against non-cancelled bookings.
// The authoritative check happens again inside CreateBooking's transaction.
func (s *Service) IsAvailable(ctx context.Context, courtID int64, date, startTime, endTime string) (bool, error) {
	if err := s.validateTimes(date, startTime, endTime); err != nil {
		return false, err
	}
	overlap, err := s.bookings.HasOverlap(ctx, courtID, date, startTime, endTime)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// GetCourtAvailability returns the open slots for one date from the slot read
// model. Booked slots are expected to have already transitioned status; this
// does not re-check the ledger.
func (s *Service) GetCourtAvailability(ctx context.Context, courtID int64, date string) ([]domain.TimeSlot, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, ErrValidation
	}
	return s.slots.ListAvailable(ctx, courtID, date)
}

// AvailabilityForRange decomposes an inclusive date range into per-date
// availability lookups.
func (s *Service) AvailabilityForRange(ctx context.Context, courtID int64, fromDate, toDate string) ([]DayAvailability, error) {
	from, err := domain.ParseDate(fromDate)
	if err != nil {
		return nil, ErrValidation
	}
	to, err := domain.ParseDate(toDate)
	if err != nil {
		return nil, ErrValidation
	}
	if to.Before(from) {
		return nil, ErrValidation
	}

	var out []DayAvailability
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		date := day.Format(domain.DateLayout)
		slots, err := s.slots.ListAvailable(ctx, courtID, date)
		if err != nil {
			return nil, err
		}
		out = append(out, DayAvailability{Date: date, Slots: slots})
	}
	return out, nil
}

// Cancel marks a booking cancelled when the caller owns it and the two-hour
// cut-off has not passed. Admins may cancel any booking.
func (s *Service) Cancel(ctx context.Context, bookingID, actorID int64, isAdmin bool, reason string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.UserID != actorID && !isAdmin {
		return nil, ErrForbidden
	}

	now := s.now().UTC()
	if !b.IsCancellable(now) {
		return nil, ErrNotCancellable
	}

	if err := s.bookings.Cancel(ctx, b.ID, reason, now); err != nil {
		return nil, err
	}
	b.Status = domain.BookingCancelled
	b.CancellationReason = reason
	b.CancelledAt = &now

	if err := s.slots.ReleaseBookedInRange(ctx, b.CourtID, b.BookingDate, b.StartTime, b.EndTime); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Error("slot release failed")
	}

	s.audit.Record(ctx, actorID, "booking.cancel", "booking", b.ID, reason)
	s.publish(ctx, EventBookingCancelled, b, now)
	return b, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	b, err := s.bookings.GetByNumber(ctx, number)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *Service) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID, limit, offset)
}

// Confirm transitions a pending booking to confirmed.
func (s *Service) Confirm(ctx context.Context, id int64) error {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if b.Status != domain.BookingPending {
		return ErrNotCancellable
	}
	return s.bookings.UpdateStatus(ctx, id, domain.BookingConfirmed)
}

// MarkPaid records payment and promotes the booking status.
func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !b.IsActive() {
		return ErrNotCancellable
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, id, domain.PaymentPaid); err != nil {
		return err
	}
	return s.bookings.UpdateStatus(ctx, id, domain.BookingPaid)
}

func (s *Service) validateWindow(date, startTime, endTime string) error {
	if err := s.validateTimes(date, startTime, endTime); err != nil {
		return err
	}
	startAt, err := domain.CombineDateTime(date, startTime)
	if err != nil {
		return ErrValidation
	}
	if !startAt.After(s.now().UTC()) {
		return ErrValidation
	}
	return nil
}

func (s *Service) validateTimes(date, startTime, endTime string) error {
	if _, err := domain.ParseDate(date); err != nil {
		return ErrValidation
	}
	if _, err := domain.ParseTimeOfDay(startTime); err != nil {
		return ErrValidation
	}
	if _, err := domain.ParseTimeOfDay(endTime); err != nil {
		return ErrValidation
	}
	if startTime >= endTime {
		return ErrValidation
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, b *domain.Booking, at time.Time) {
	if s.events == nil {
		return
	}
	ev := BookingEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		UserID:        b.UserID,
		CourtID:       b.CourtID,
		BookingDate:   b.BookingDate,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		FinalAmount:   b.FinalAmount,
		OccurredAt:    at,
	}
	if err := s.events.PublishBookingEvent(ctx, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"type":       eventType,
			"booking_id": b.ID,
		}).Error("event publish failed")
	}
}
