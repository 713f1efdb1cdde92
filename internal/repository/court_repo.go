package repository

import (
	"context"
	"time"

	"courtbook/internal/domain"

	"gorm.io/gorm"
)

type CourtRepository struct {
	db *gorm.DB
}

func NewCourtRepository(db *gorm.DB) *CourtRepository {
	return &CourtRepository{db: db}
}

type courtModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	VenueID     int64     `gorm:"column:venue_id;index"`
	SportID     int64     `gorm:"column:sport_id;index"`
	Name        string    `gorm:"column:name"`
	Code        string    `gorm:"column:code"`
	Description *string   `gorm:"column:description"`
	SurfaceType string    `gorm:"column:surface_type"`
	HourlyRate  float64   `gorm:"column:hourly_rate"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (courtModel) TableName() string { return "courts" }

func toDomainCourt(m courtModel) *domain.Court {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}

	return &domain.Court{
		ID:          m.ID,
		VenueID:     m.VenueID,
		SportID:     m.SportID,
		Name:        m.Name,
		Code:        m.Code,
		Description: desc,
		SurfaceType: domain.SurfaceType(m.SurfaceType),
		HourlyRate:  m.HourlyRate,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toCourtModel(c *domain.Court) courtModel {
	var desc *string
	if c.Description != "" {
		v := c.Description
		desc = &v
	}

	return courtModel{
		ID:          c.ID,
		VenueID:     c.VenueID,
		SportID:     c.SportID,
		Name:        c.Name,
		Code:        c.Code,
		Description: desc,
		SurfaceType: string(c.SurfaceType),
		HourlyRate:  c.HourlyRate,
		IsActive:    c.IsActive,
	}
}

func (r *CourtRepository) Create(ctx context.Context, c *domain.Court) error {
	m := toCourtModel(c)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*c = *toDomainCourt(m)
	return nil
}

func (r *CourtRepository) Update(ctx context.Context, c *domain.Court) error {
	m := toCourtModel(c)
	return r.db.WithContext(ctx).Model(&courtModel{}).Where("id = ?", c.ID).Updates(&m).Error
}

func (r *CourtRepository) GetByID(ctx context.Context, id int64) (*domain.Court, error) {
	var m courtModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainCourt(m), nil
}

// CourtFilter narrows ListActive. Zero values mean "no filter".
type CourtFilter struct {
	VenueID  int64
	SportID  int64
	MinPrice float64
	MaxPrice float64
	Search   string
	Limit    int
	Offset   int
}

func (r *CourtRepository) ListActive(ctx context.Context, f CourtFilter) ([]domain.Court, int64, error) {
	q := r.db.WithContext(ctx).Model(&courtModel{}).Where("is_active = ?", true)
	if f.VenueID > 0 {
		q = q.Where("venue_id = ?", f.VenueID)
	}
	if f.SportID > 0 {
		q = q.Where("sport_id = ?", f.SportID)
	}
	if f.MinPrice > 0 {
		q = q.Where("hourly_rate >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("hourly_rate <= ?", f.MaxPrice)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR code LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 15
	}

	var rows []courtModel
	if err := q.Order("name ASC").Limit(limit).Offset(f.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.Court, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainCourt(m))
	}
	return out, total, nil
}

// ListActiveIDs returns the IDs of every active court; the slot horizon job
// iterates over this set.
func (r *CourtRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&courtModel{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *CourtRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).Model(&courtModel{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *CourtRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&courtModel{}, id).Error
}
