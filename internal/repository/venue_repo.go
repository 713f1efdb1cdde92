package repository

import (
	"context"
	"time"

	"courtbook/internal/domain"

	"gorm.io/gorm"
)

type VenueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

type venueModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	OwnerID     int64     `gorm:"column:owner_id;index"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	Address     string    `gorm:"column:address"`
	City        string    `gorm:"column:city"`
	Phone       string    `gorm:"column:phone"`
	OpeningTime string    `gorm:"column:opening_time"`
	ClosingTime string    `gorm:"column:closing_time"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (venueModel) TableName() string { return "venues" }

func toDomainVenue(m venueModel) *domain.Venue {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}

	return &domain.Venue{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: desc,
		Address:     m.Address,
		City:        m.City,
		Phone:       m.Phone,
		OpeningTime: m.OpeningTime,
		ClosingTime: m.ClosingTime,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *VenueRepository) Create(ctx context.Context, v *domain.Venue) error {
	var desc *string
	if v.Description != "" {
		d := v.Description
		desc = &d
	}
	m := venueModel{
		OwnerID:     v.OwnerID,
		Name:        v.Name,
		Description: desc,
		Address:     v.Address,
		City:        v.City,
		Phone:       v.Phone,
		OpeningTime: v.OpeningTime,
		ClosingTime: v.ClosingTime,
		IsActive:    v.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*v = *toDomainVenue(m)
	return nil
}

func (r *VenueRepository) GetByID(ctx context.Context, id int64) (*domain.Venue, error) {
	var m venueModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainVenue(m), nil
}

func (r *VenueRepository) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := r.db.WithContext(ctx).Model(&venueModel{}).
		Where("id = ?", id).
		Pluck("owner_id", &ownerID).Error
	return ownerID, err
}

func (r *VenueRepository) ListActive(ctx context.Context, limit, offset int) ([]domain.Venue, error) {
	if limit <= 0 || limit > 100 {
		limit = 15
	}
	var rows []venueModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Venue, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainVenue(m))
	}
	return out, nil
}

func (r *VenueRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).Model(&venueModel{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
