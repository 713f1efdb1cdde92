package catalog

import (
	"context"

	"courtbook/internal/domain"
	"courtbook/internal/repository"
)

type VenueRepository interface {
	Create(ctx context.Context, v *domain.Venue) error
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
	GetOwnerID(ctx context.Context, id int64) (int64, error)
	ListActive(ctx context.Context, limit, offset int) ([]domain.Venue, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type SportRepository interface {
	Create(ctx context.Context, s *domain.Sport) error
	GetByID(ctx context.Context, id int64) (*domain.Sport, error)
	ListActive(ctx context.Context) ([]domain.Sport, error)
	Delete(ctx context.Context, id int64) error
}

type CourtRepository interface {
	Create(ctx context.Context, c *domain.Court) error
	Update(ctx context.Context, c *domain.Court) error
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
	ListActive(ctx context.Context, f repository.CourtFilter) ([]domain.Court, int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// BookingGuard answers the questions the delete guards and stats endpoints
// put to the ledger.
type BookingGuard interface {
	HasUpcomingActiveForCourt(ctx context.Context, courtID int64, today string) (bool, error)
	HasUpcomingActiveForSport(ctx context.Context, sportID int64, today string) (bool, error)
	StatsForCourt(ctx context.Context, courtID int64, fromDate, toDate string) (*repository.CourtStats, error)
}

type AuditSink interface {
	Record(ctx context.Context, actorID int64, action, entity string, entityID int64, details any)
}
