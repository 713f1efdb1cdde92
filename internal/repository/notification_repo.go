package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"courtbook/internal/domain"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type notificationModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	Title        string     `gorm:"column:title"`
	Body         string     `gorm:"column:body"`
	Type         string     `gorm:"column:type;index"`
	Data         []byte     `gorm:"column:data"`
	TargetUsers  []byte     `gorm:"column:target_users"`
	TargetRole   string     `gorm:"column:target_role"`
	TargetTopic  string     `gorm:"column:target_topic"`
	Status       string     `gorm:"column:status;index"`
	TotalDevices int        `gorm:"column:total_devices"`
	TotalSent    int        `gorm:"column:total_sent"`
	TotalSuccess int        `gorm:"column:total_success"`
	TotalFailed  int        `gorm:"column:total_failed"`
	ErrorDetails *string    `gorm:"column:error_details"`
	CreatedBy    int64      `gorm:"column:created_by"`
	SentAt       *time.Time `gorm:"column:sent_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (notificationModel) TableName() string { return "notifications" }

func toDomainNotification(m notificationModel) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:           m.ID,
		Title:        m.Title,
		Body:         m.Body,
		Type:         domain.NotificationType(m.Type),
		TargetRole:   m.TargetRole,
		TargetTopic:  m.TargetTopic,
		Status:       domain.NotificationStatus(m.Status),
		TotalDevices: m.TotalDevices,
		TotalSent:    m.TotalSent,
		TotalSuccess: m.TotalSuccess,
		TotalFailed:  m.TotalFailed,
		CreatedBy:    m.CreatedBy,
		SentAt:       m.SentAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.ErrorDetails != nil {
		n.ErrorDetails = *m.ErrorDetails
	}
	if len(m.Data) > 0 {
		n.Data = json.RawMessage(m.Data)
	}
	if len(m.TargetUsers) > 0 {
		if err := json.Unmarshal(m.TargetUsers, &n.TargetUsers); err != nil {
			return nil, fmt.Errorf("decode target_users for notification %d: %w", m.ID, err)
		}
	}
	return n, nil
}

func toNotificationModel(n *domain.Notification) (notificationModel, error) {
	m := notificationModel{
		ID:           n.ID,
		Title:        n.Title,
		Body:         n.Body,
		Type:         string(n.Type),
		TargetRole:   n.TargetRole,
		TargetTopic:  n.TargetTopic,
		Status:       string(n.Status),
		TotalDevices: n.TotalDevices,
		TotalSent:    n.TotalSent,
		TotalSuccess: n.TotalSuccess,
		TotalFailed:  n.TotalFailed,
		CreatedBy:    n.CreatedBy,
		SentAt:       n.SentAt,
	}
	if n.ErrorDetails != "" {
		v := n.ErrorDetails
		m.ErrorDetails = &v
	}
	if len(n.Data) > 0 {
		m.Data = []byte(n.Data)
	}
	if n.TargetUsers != nil {
		b, err := json.Marshal(n.TargetUsers)
		if err != nil {
			return notificationModel{}, err
		}
		m.TargetUsers = b
	}
	return m, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	m, err := toNotificationModel(n)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	out, err := toDomainNotification(m)
	if err != nil {
		return err
	}
	*n = *out
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	var m notificationModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainNotification(m)
}

func (r *NotificationRepository) List(ctx context.Context, limit, offset int) ([]domain.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&notificationModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []notificationModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.Notification, 0, len(rows))
	for _, m := range rows {
		n, err := toDomainNotification(m)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	return out, total, nil
}

// MarkSending transitions the job to sending and records the device count the
// dispatcher resolved for it.
func (r *NotificationRepository) MarkSending(ctx context.Context, id int64, totalDevices int) error {
	return r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        string(domain.NotificationSending),
			"total_devices": totalDevices,
		}).Error
}

// IncrementCounters adds a finished batch's tallies to the job row. The
// arithmetic happens in SQL so readers polling the job see monotonically
// growing counts even while batches run.
func (r *NotificationRepository) IncrementCounters(ctx context.Context, id int64, sent, success, failed int) error {
	return r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_sent":    gorm.Expr("total_sent + ?", sent),
			"total_success": gorm.Expr("total_success + ?", success),
			"total_failed":  gorm.Expr("total_failed + ?", failed),
		}).Error
}

func (r *NotificationRepository) MarkCompleted(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  string(domain.NotificationCompleted),
			"sent_at": at,
		}).Error
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, id int64, errDetails string) error {
	return r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        string(domain.NotificationFailed),
			"error_details": errDetails,
		}).Error
}
