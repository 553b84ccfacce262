package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ReportScopeSession  = "session"
	ReportScopeLearner  = "learner"
	AudienceParent      = "parent"
	AudienceTeacher     = "teacher"
	GenerationAI        = "ai"
	GenerationTemplate  = "template"
	ValidationPending   = "pending"
	ValidationApproved  = "approved"
	ValidationRewritten = "rewritten"
	ValidationRejected  = "rejected"
)

// Report is a generated narrative for an observer. Every report is
// persisted, including rejected ones, so the governance trail is
// auditable.
type Report struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID        uuid.UUID      `gorm:"type:uuid;index;not null;column:learner_id" json:"learner_id"`
	Scope            string         `gorm:"not null;column:scope" json:"scope"`
	SourceSessionID  *uuid.UUID     `gorm:"type:uuid;column:source_session_id" json:"source_session_id,omitempty"`
	Audience         string         `gorm:"not null;column:audience" json:"audience"`
	Content          string         `gorm:"not null;column:content" json:"content"`
	GenerationMethod string         `gorm:"not null;column:generation_method" json:"generation_method"`
	ValidationStatus string         `gorm:"not null;column:validation_status" json:"validation_status"`
	Violations       datatypes.JSON `gorm:"column:violations" json:"violations,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Report) TableName() string {
	return "report"
}
