package repository

import (
	"context"
	"time"

	"courtbook/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TimeSlotRepository struct {
	db *gorm.DB
}

func NewTimeSlotRepository(db *gorm.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

type timeSlotModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	CourtID       int64     `gorm:"column:court_id;uniqueIndex:idx_slots_court_date_start"`
	Date          string    `gorm:"column:date;uniqueIndex:idx_slots_court_date_start"`
	StartTime     string    `gorm:"column:start_time;uniqueIndex:idx_slots_court_date_start"`
	EndTime       string    `gorm:"column:end_time"`
	Price         float64   `gorm:"column:price"`
	Status        string    `gorm:"column:status;index"`
	PricingRuleID *int64    `gorm:"column:pricing_rule_id"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (timeSlotModel) TableName() string { return "time_slots" }

func toDomainSlot(m timeSlotModel) domain.TimeSlot {
	return domain.TimeSlot{
		ID:            m.ID,
		CourtID:       m.CourtID,
		Date:          m.Date,
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		Price:         m.Price,
		Status:        domain.SlotStatus(m.Status),
		PricingRuleID: m.PricingRuleID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toSlotModel(s domain.TimeSlot) timeSlotModel {
	return timeSlotModel{
		ID:            s.ID,
		CourtID:       s.CourtID,
		Date:          s.Date,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Price:         s.Price,
		Status:        string(s.Status),
		PricingRuleID: s.PricingRuleID,
	}
}

// BulkInsert writes generated slots, skipping rows that already exist for
// (court, date, start_time) so regeneration over an existing horizon never
// duplicates or resets booked slots.
func (r *TimeSlotRepository) BulkInsert(ctx context.Context, slots []domain.TimeSlot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	rows := make([]timeSlotModel, 0, len(slots))
	for _, s := range slots {
		rows = append(rows, toSlotModel(s))
	}

	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "court_id"}, {Name: "date"}, {Name: "start_time"}},
			DoNothing: true,
		}).
		CreateInBatches(rows, 200)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return int(tx.RowsAffected), nil
}

// ListAvailable returns available-status slots for (court, date) ordered by
// start time. This is the read model behind availability-for-range.
func (r *TimeSlotRepository) ListAvailable(ctx context.Context, courtID int64, date string) ([]domain.TimeSlot, error) {
	var rows []timeSlotModel
	err := r.db.WithContext(ctx).
		Where("court_id = ? AND date = ?", courtID, date).
		Where("status = ?", string(domain.SlotAvailable)).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.TimeSlot, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainSlot(m))
	}
	return out, nil
}

// MarkBookedInRange flips available slots covered by [startTime, endTime) to
// booked. Denormalized read-model update; the bookings table stays the
// source of truth for conflicts.
func (r *TimeSlotRepository) MarkBookedInRange(ctx context.Context, courtID int64, date, startTime, endTime string) error {
	return r.db.WithContext(ctx).Model(&timeSlotModel{}).
		Where("court_id = ? AND date = ?", courtID, date).
		Where("start_time >= ? AND start_time < ?", startTime, endTime).
		Where("status = ?", string(domain.SlotAvailable)).
		Update("status", string(domain.SlotBooked)).Error
}

// ReleaseBookedInRange reverses MarkBookedInRange after a cancellation.
func (r *TimeSlotRepository) ReleaseBookedInRange(ctx context.Context, courtID int64, date, startTime, endTime string) error {
	return r.db.WithContext(ctx).Model(&timeSlotModel{}).
		Where("court_id = ? AND date = ?", courtID, date).
		Where("start_time >= ? AND start_time < ?", startTime, endTime).
		Where("status = ?", string(domain.SlotBooked)).
		Update("status", string(domain.SlotAvailable)).Error
}

func (r *TimeSlotRepository) UpdateStatus(ctx context.Context, id int64, status domain.SlotStatus) error {
	return r.db.WithContext(ctx).Model(&timeSlotModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

// LastGeneratedDate returns the greatest slot date for a court, or "" when
// the court has no slots yet. The horizon job uses it to resume generation.
func (r *TimeSlotRepository) LastGeneratedDate(ctx context.Context, courtID int64) (string, error) {
	var date *string
	err := r.db.WithContext(ctx).Model(&timeSlotModel{}).
		Where("court_id = ?", courtID).
		Select("MAX(date)").Scan(&date).Error
	if err != nil {
		return "", err
	}
	if date == nil {
		return "", nil
	}
	return *date, nil
}
