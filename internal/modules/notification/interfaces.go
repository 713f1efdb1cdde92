package notification

import (
	"context"
	"time"

	"courtbook/internal/domain"
)

// Message is the provider-neutral push payload.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// SendOutcome is the per-token result of a multicast attempt, index-aligned
// with the token batch that produced it.
type SendOutcome struct {
	Success bool
	Err     error
}

// BatchResult aggregates one multicast call.
type BatchResult struct {
	SuccessCount int
	FailureCount int
	Outcomes     []SendOutcome
}

// Messenger is the push transport. A non-nil error from SendMulticast means
// the whole batch failed at the transport level; per-token failures come back
// inside BatchResult with ProviderError values.
type Messenger interface {
	SendMulticast(ctx context.Context, tokens []string, msg Message) (*BatchResult, error)
	Send(ctx context.Context, token string, msg Message) error
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) (success, failed int, err error)
	SendToTopic(ctx context.Context, topic string, msg Message) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	List(ctx context.Context, limit, offset int) ([]domain.Notification, int64, error)
	MarkSending(ctx context.Context, id int64, totalDevices int) error
	IncrementCounters(ctx context.Context, id int64, sent, success, failed int) error
	MarkCompleted(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, errDetails string) error
}

type DeviceTokenRepository interface {
	Upsert(ctx context.Context, userID int64, token, deviceType, deviceName string, now time.Time) (*domain.DeviceToken, error)
	Remove(ctx context.Context, userID int64, token string) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.DeviceToken, error)
	ActiveTokensForUsers(ctx context.Context, userIDs []int64) ([]string, error)
	ActiveTokens(ctx context.Context) ([]string, error)
	DeactivateByToken(ctx context.Context, token string) error
	TouchLastUsed(ctx context.Context, token string, at time.Time) error
}

// UserDirectory resolves role-based target populations to user IDs.
type UserDirectory interface {
	IDsByRole(ctx context.Context, role domain.UserRole) ([]int64, error)
	AllIDs(ctx context.Context) ([]int64, error)
}
