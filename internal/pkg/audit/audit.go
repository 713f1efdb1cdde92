package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Entry is one row of the activity log: who did what to which record.
type Entry struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	ActorID   int64     `gorm:"column:actor_id;index"`
	Action    string    `gorm:"column:action;index"`
	Entity    string    `gorm:"column:entity"`
	EntityID  int64     `gorm:"column:entity_id"`
	Details   []byte    `gorm:"column:details"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Entry) TableName() string { return "audit_log" }

// Sink persists audit entries. Failures are logged and swallowed; an audit
// write must never fail the operation it records.
type Sink struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewSink(db *gorm.DB, log *logrus.Logger) *Sink {
	return &Sink{db: db, log: log}
}

func (s *Sink) Record(ctx context.Context, actorID int64, action, entity string, entityID int64, details any) {
	var payload []byte
	if details != nil {
		b, err := json.Marshal(details)
		if err == nil {
			payload = b
		}
	}

	e := Entry{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  payload,
	}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		s.log.WithError(err).WithField("action", action).Warn("audit write failed")
	}
}

// Nop discards entries; used in tests and in commands without a database.
type Nop struct{}

func (Nop) Record(ctx context.Context, actorID int64, action, entity string, entityID int64, details any) {
}
