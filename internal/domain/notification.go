package domain

import (
	"encoding/json"
	"time"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSending   NotificationStatus = "sending"
	NotificationCompleted NotificationStatus = "completed"
	NotificationFailed    NotificationStatus = "failed"
)

type NotificationType string

const (
	NotificationGeneral  NotificationType = "general"
	NotificationBooking  NotificationType = "booking"
	NotificationReminder NotificationType = "reminder"
	NotificationPromo    NotificationType = "promo"
)

// Notification is a push dispatch job. Targets are either an explicit user-id
// list or a topic, never both. Counters are updated incrementally as batches
// complete so callers can poll progress mid-flight.
type Notification struct {
	ID    int64            `json:"id"`
	Title string           `json:"title" validate:"required"`
	Body  string           `json:"body" validate:"required"`
	Data  json.RawMessage  `json:"data,omitempty" gorm:"type:jsonb"`
	Type  NotificationType `json:"type"`

	TargetUsers []int64 `json:"target_users,omitempty" gorm:"serializer:json"`
	TargetRole  string  `json:"target_role,omitempty"`
	TargetTopic string  `json:"target_topic,omitempty"`

	TotalDevices int `json:"total_devices"`
	TotalSent    int `json:"total_sent"`
	TotalSuccess int `json:"total_success"`
	TotalFailed  int `json:"total_failed"`

	Status       NotificationStatus `json:"status"`
	ErrorDetails string             `json:"error_details,omitempty" gorm:"type:text"`
	CreatedBy    int64              `json:"created_by,omitempty"`
	SentAt       *time.Time         `json:"sent_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// SuccessRate is the percentage of successful sends, 2dp.
func (n Notification) SuccessRate() float64 {
	if n.TotalSent == 0 {
		return 0
	}
	return float64(int(float64(n.TotalSuccess)/float64(n.TotalSent)*10000+0.5)) / 100
}

// DeviceToken is a user's push registration. Unique per (UserID, Token).
// Tokens the provider reports as permanently invalid are deactivated, never
// deleted, preserving audit history.
type DeviceToken struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id" validate:"required"`
	Token      string     `json:"token" validate:"required"`
	DeviceType string     `json:"device_type,omitempty"`
	DeviceName string     `json:"device_name,omitempty"`
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
