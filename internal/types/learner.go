package types

import (
	"time"

	"github.com/google/uuid"
)

// Learner is an alias-only reference to a child, owned by exactly one
// observer. No age, gender, grade, or real name is ever stored.
type Learner struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ObserverID  uuid.UUID `gorm:"type:uuid;not null;column:observer_id;uniqueIndex:idx_learner_observer_alias,priority:1" json:"observer_id"`
	Alias       string    `gorm:"not null;column:alias;uniqueIndex:idx_learner_observer_alias,priority:2" json:"alias"`
	LearnerCode string    `gorm:"uniqueIndex;not null;column:learner_code" json:"-"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Learner) TableName() string {
	return "learner"
}
