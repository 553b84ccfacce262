package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleParent  = "parent"
	RoleTeacher = "teacher"
)

// Observer is the adult account (parent or teacher) that owns learners.
// No child data lives here.
type Observer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	Role      string    `gorm:"not null;default:parent;column:role" json:"role"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Observer) TableName() string {
	return "observer"
}
