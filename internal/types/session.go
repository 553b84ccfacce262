package types

import (
	"time"

	"github.com/google/uuid"
)

// Session is the durable record of a completed (or in-progress) play
// session. Raw events never land here; only the session envelope.
type Session struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID   uuid.UUID  `gorm:"type:uuid;index;not null;column:learner_id" json:"learner_id"`
	GameSet     string     `gorm:"not null;column:game_set" json:"game_set"`
	StartedAt   time.Time  `gorm:"not null;column:started_at" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	EventCount  int        `gorm:"not null;default:0;column:event_count" json:"event_count"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Session) TableName() string {
	return "session"
}
