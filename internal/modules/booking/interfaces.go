package booking

import (
	"context"
	"time"

	"courtbook/internal/domain"
	"courtbook/internal/modules/schedule"
)

// BookingRepository is the ledger surface the service drives. The overlap
// re-check and insert are one atomic repository call; everything else reads
// or mutates committed rows.
type BookingRepository interface {
	CreateWithNoOverlap(ctx context.Context, b *domain.Booking, now time.Time) error
	HasOverlap(ctx context.Context, courtID int64, date, startTime, endTime string) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByNumber(ctx context.Context, number string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
	ListActiveForCourtDate(ctx context.Context, courtID int64, date string) ([]domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason string, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
}

// SlotRepository is the denormalized slot read model kept in step with the
// ledger.
type SlotRepository interface {
	ListAvailable(ctx context.Context, courtID int64, date string) ([]domain.TimeSlot, error)
	MarkBookedInRange(ctx context.Context, courtID int64, date, startTime, endTime string) error
	ReleaseBookedInRange(ctx context.Context, courtID int64, date, startTime, endTime string) error
}

// PriceResolver prices a booking window.
type PriceResolver interface {
	PriceFor(ctx context.Context, courtID int64, date, timeOfDay string) (schedule.ResolvedPrice, error)
}

// EventPublisher pushes ledger changes to the message broker.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, ev BookingEvent) error
}

// AuditSink records who did what to which booking.
type AuditSink interface {
	Record(ctx context.Context, actorID int64, action, entity string, entityID int64, details any)
}
