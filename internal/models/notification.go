package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the in-app notification shown in the user's feed.
type Notification struct {
	BaseModel
	UserID              uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Type                string     `json:"type" gorm:"type:varchar(50);not null;index"`
	Title               string     `json:"title" gorm:"size:255;not null"`
	Body                string     `json:"body" gorm:"type:text;not null"`
	RelatedResourceType string     `json:"related_resource_type,omitempty" gorm:"size:50"`
	RelatedResourceID   *uuid.UUID `json:"related_resource_id" gorm:"type:uuid"`
	ReadAt              *time.Time `json:"read_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// PushOutbox is a queued outbound push message. Rows are written in the same
// transaction as the state change that motivates them and drained by the
// dispatcher afterwards, so delivery failures never roll back workflow state.
type PushOutbox struct {
	BaseModel
	TargetUserID uuid.UUID  `json:"target_user_id" gorm:"type:uuid;not null;index"`
	Title        string     `json:"title" gorm:"size:255;not null"`
	Body         string     `json:"body" gorm:"type:text;not null"`
	Status       PushStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Attempts     int        `json:"attempts" gorm:"default:0"`
	LastError    string     `json:"last_error,omitempty" gorm:"type:text"`
	SentAt       *time.Time `json:"sent_at"`
}
