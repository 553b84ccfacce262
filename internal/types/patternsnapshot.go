package types

import (
	"time"

	"github.com/google/uuid"
)

// PatternSnapshot is the per-session classification output. Only
// observational language and the confidence tier are stored; numeric
// features never leave the request that derived them.
type PatternSnapshot struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID      uuid.UUID `gorm:"type:uuid;index;not null;column:learner_id" json:"learner_id"`
	SessionID      uuid.UUID `gorm:"type:uuid;index;not null;column:session_id" json:"session_id"`
	PatternName    string    `gorm:"not null;column:pattern_name" json:"pattern_name"`
	LearningImpact string    `gorm:"not null;column:learning_impact" json:"learning_impact"`
	SupportFocus   string    `gorm:"not null;column:support_focus" json:"support_focus"`
	Confidence     string    `gorm:"not null;column:confidence" json:"confidence"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (PatternSnapshot) TableName() string {
	return "pattern_snapshot"
}
