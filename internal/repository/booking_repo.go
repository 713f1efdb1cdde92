package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"courtbook/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrOverlap is returned when a booking would overlap an active booking on
// the same court and date under the half-open rule.
var ErrOverlap = errors.New("booking overlaps an existing booking")

// errNumberTaken means a concurrent transaction won the same booking number.
// The create is retried with a fresh number; callers never see this.
var errNumberTaken = errors.New("booking number already taken")

const numberRetries = 3

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	BookingNumber      string     `gorm:"column:booking_number;uniqueIndex"`
	UserID             int64      `gorm:"column:user_id;index"`
	CourtID            int64      `gorm:"column:court_id;index:idx_bookings_court_date"`
	BookingDate        string     `gorm:"column:booking_date;index:idx_bookings_court_date"`
	StartTime          string     `gorm:"column:start_time"`
	EndTime            string     `gorm:"column:end_time"`
	TotalAmount        float64    `gorm:"column:total_amount"`
	DiscountAmount     float64    `gorm:"column:discount_amount"`
	FinalAmount        float64    `gorm:"column:final_amount"`
	Status             string     `gorm:"column:status;index"`
	PaymentStatus      string     `gorm:"column:payment_status"`
	Notes              *string    `gorm:"column:notes"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var notes, reason string
	if m.Notes != nil {
		notes = *m.Notes
	}
	if m.CancellationReason != nil {
		reason = *m.CancellationReason
	}

	return &domain.Booking{
		ID:                 m.ID,
		BookingNumber:      m.BookingNumber,
		UserID:             m.UserID,
		CourtID:            m.CourtID,
		BookingDate:        m.BookingDate,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		TotalAmount:        m.TotalAmount,
		DiscountAmount:     m.DiscountAmount,
		FinalAmount:        m.FinalAmount,
		Status:             domain.BookingStatus(m.Status),
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		Notes:              notes,
		CancellationReason: reason,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		CancelledAt:        m.CancelledAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var notes, reason *string
	if b.Notes != "" {
		v := b.Notes
		notes = &v
	}
	if b.CancellationReason != "" {
		v := b.CancellationReason
		reason = &v
	}

	return bookingModel{
		ID:                 b.ID,
		BookingNumber:      b.BookingNumber,
		UserID:             b.UserID,
		CourtID:            b.CourtID,
		BookingDate:        b.BookingDate,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		TotalAmount:        b.TotalAmount,
		DiscountAmount:     b.DiscountAmount,
		FinalAmount:        b.FinalAmount,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		Notes:              notes,
		CancellationReason: reason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		CancelledAt:        b.CancelledAt,
	}
}

// rowLocks reports whether the dialect honors SELECT ... FOR UPDATE.
// SQLite serializes writers on its own, so the clause is skipped there.
func (r *BookingRepository) rowLocks() bool {
	return r.db.Dialector.Name() == "postgres"
}

// CreateWithNoOverlap persists b atomically: the overlap re-check, the
// booking-number assignment and the insert run inside one transaction,
// serialized per court. A booking-number collision with a concurrent
// transaction on another court is retried with a fresh number.
func (r *BookingRepository) CreateWithNoOverlap(ctx context.Context, b *domain.Booking, now time.Time) error {
	var err error
	for attempt := 0; attempt < numberRetries; attempt++ {
		err = r.createOnce(ctx, b, now)
		if !errors.Is(err, errNumberTaken) {
			return err
		}
	}
	return err
}

func (r *BookingRepository) createOnce(ctx context.Context, b *domain.Booking, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.rowLocks() {
			// Lock the court row first. Locking only candidate booking rows
			// is not enough: an empty candidate set takes no lock, and two
			// transactions for the same free window would both pass the
			// overlap check.
			var courtID int64
			res := tx.Raw("SELECT id FROM courts WHERE id = ? FOR UPDATE", b.CourtID).Scan(&courtID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		var clash bookingModel
		err := tx.Model(&bookingModel{}).
			Where("court_id = ? AND booking_date = ?", b.CourtID, b.BookingDate).
			Where("status <> ?", string(domain.BookingCancelled)).
			Where("start_time < ? AND end_time > ?", b.EndTime, b.StartTime).
			Take(&clash).Error
		if err == nil {
			return ErrOverlap
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		number, err := r.nextBookingNumber(tx, now)
		if err != nil {
			return err
		}

		m := toBookingModel(b)
		m.BookingNumber = number
		if err := tx.Create(&m).Error; err != nil {
			return mapUniqueViolation(err)
		}
		*b = *toDomainBooking(m)
		return nil
	})
}

// nextBookingNumber finds the greatest BK-<year>- number and increments its
// six-digit suffix, starting at 000001 for the first booking of a year. Must
// run inside the caller's transaction.
func (r *BookingRepository) nextBookingNumber(tx *gorm.DB, now time.Time) (string, error) {
	prefix := domain.BookingNumberPrefix(now)

	q := tx.Model(&bookingModel{}).
		Where("booking_number LIKE ?", prefix+"%").
		Order("booking_number DESC")
	if r.rowLocks() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var last bookingModel
	err := q.Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return prefix + "000001", nil
	}
	if err != nil {
		return "", err
	}

	suffix := domain.NumberSuffix(last.BookingNumber, prefix)
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return "", fmt.Errorf("malformed booking number %q: %w", last.BookingNumber, err)
	}
	return fmt.Sprintf("%s%06d", prefix, n+1), nil
}

// mapUniqueViolation classifies a Postgres duplicate-key error. The only
// unique index on bookings is booking_number, so a 23505 here means a
// concurrent transaction on another court won the same sequence number, not
// an overlap; the caller retries with a fresh number.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", errNumberTaken, pgErr.ConstraintName)
	}
	return err
}

// HasOverlap checks the half-open overlap rule against non-cancelled
// bookings without taking locks. This is the advisory read-path check; the
// authoritative one lives in CreateWithNoOverlap.
func (r *BookingRepository) HasOverlap(ctx context.Context, courtID int64, date, startTime, endTime string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("court_id = ? AND booking_date = ?", courtID, date).
		Where("status <> ?", string(domain.BookingCancelled)).
		Where("start_time < ? AND end_time > ?", endTime, startTime).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

// ListActiveForCourtDate returns non-cancelled bookings for (court, date)
// ordered by start time.
func (r *BookingRepository) ListActiveForCourtDate(ctx context.Context, courtID int64, date string) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("court_id = ? AND booking_date = ?", courtID, date).
		Where("status <> ?", string(domain.BookingCancelled)).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("booking_date DESC, start_time DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// Cancel marks the booking cancelled with a reason. Status checks belong to
// the service; this only writes the terminal state.
func (r *BookingRepository) Cancel(ctx context.Context, id int64, reason string, at time.Time) error {
	updates := map[string]any{
		"status":       string(domain.BookingCancelled),
		"cancelled_at": at,
	}
	if reason != "" {
		updates["cancellation_reason"] = reason
	}
	return r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Updates(updates).Error
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Update("payment_status", string(status)).Error
}

// HasUpcomingActiveForCourt backs the court delete guard: any non-cancelled
// booking dated today or later blocks deletion.
func (r *BookingRepository) HasUpcomingActiveForCourt(ctx context.Context, courtID int64, today string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("court_id = ? AND booking_date >= ?", courtID, today).
		Where("status <> ?", string(domain.BookingCancelled)).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// HasUpcomingActiveForSport is the same guard keyed by sport, joined through
// the courts table.
func (r *BookingRepository) HasUpcomingActiveForSport(ctx context.Context, sportID int64, today string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Joins("JOIN courts ON courts.id = bookings.court_id").
		Where("courts.sport_id = ?", sportID).
		Where("bookings.booking_date >= ?", today).
		Where("bookings.status <> ?", string(domain.BookingCancelled)).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// CourtStats aggregates bookings for a court over a closed date range.
type CourtStats struct {
	TotalBookings     int64   `json:"total_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	CancelledBookings int64   `json:"cancelled_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
}

func (r *BookingRepository) StatsForCourt(ctx context.Context, courtID int64, fromDate, toDate string) (*CourtStats, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&bookingModel{}).
			Where("court_id = ? AND booking_date BETWEEN ? AND ?", courtID, fromDate, toDate)
	}

	var s CourtStats
	if err := base().Count(&s.TotalBookings).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", string(domain.BookingConfirmed)).Count(&s.ConfirmedBookings).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", string(domain.BookingCancelled)).Count(&s.CancelledBookings).Error; err != nil {
		return nil, err
	}
	var revenue *float64
	if err := base().Where("status <> ?", string(domain.BookingCancelled)).
		Select("SUM(final_amount)").Scan(&revenue).Error; err != nil {
		return nil, err
	}
	if revenue != nil {
		s.TotalRevenue = *revenue
	}
	return &s, nil
}
