package repository

import (
	"context"
	"time"

	"courtbook/internal/domain"

	"gorm.io/gorm"
)

type SportRepository struct {
	db *gorm.DB
}

func NewSportRepository(db *gorm.DB) *SportRepository {
	return &SportRepository{db: db}
}

type sportModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Slug      string    `gorm:"column:slug;uniqueIndex"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sportModel) TableName() string { return "sports" }

func toDomainSport(m sportModel) domain.Sport {
	return domain.Sport{
		ID:        m.ID,
		Name:      m.Name,
		Slug:      m.Slug,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}

func (r *SportRepository) Create(ctx context.Context, s *domain.Sport) error {
	m := sportModel{Name: s.Name, Slug: s.Slug, IsActive: s.IsActive}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*s = toDomainSport(m)
	return nil
}

func (r *SportRepository) GetByID(ctx context.Context, id int64) (*domain.Sport, error) {
	var m sportModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	s := toDomainSport(m)
	return &s, nil
}

func (r *SportRepository) ListActive(ctx context.Context) ([]domain.Sport, error) {
	var rows []sportModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Sport, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainSport(m))
	}
	return out, nil
}

func (r *SportRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&sportModel{}, id).Error
}
