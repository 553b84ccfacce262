package types

import (
	"time"

	"github.com/google/uuid"
)

type ObserverToken struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ObserverID   uuid.UUID `gorm:"type:uuid;index;not null;column:observer_id" json:"observer_id"`
	AccessToken  string    `gorm:"index;not null;column:access_token" json:"-"`
	RefreshToken string    `gorm:"index;not null;column:refresh_token" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;column:expires_at" json:"expires_at"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ObserverToken) TableName() string {
	return "observer_token"
}
