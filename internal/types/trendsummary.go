package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	TrendStable      = "stable"
	TrendFluctuating = "fluctuating"
	TrendImproving   = "improving"
)

// TrendSummary is the cross-session rollup for one pattern of one
// learner. There is at most one row per (learner, pattern) pair.
type TrendSummary struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID    uuid.UUID `gorm:"type:uuid;not null;column:learner_id;uniqueIndex:idx_trend_learner_pattern,priority:1" json:"learner_id"`
	PatternName  string    `gorm:"not null;column:pattern_name;uniqueIndex:idx_trend_learner_pattern,priority:2" json:"pattern_name"`
	TrendType    string    `gorm:"not null;column:trend_type" json:"trend_type"`
	SessionCount int       `gorm:"not null;column:session_count" json:"session_count"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TrendSummary) TableName() string {
	return "trend_summary"
}
