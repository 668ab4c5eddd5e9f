package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeIntern      UserType = "intern"
	UserTypeCompany     UserType = "company"
	UserTypeInstitution UserType = "institution"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type OfferStatus string

const (
	OfferStatusOpen   OfferStatus = "open"
	OfferStatusClosed OfferStatus = "closed"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusDenied   ApplicationStatus = "denied"
)

type InternshipStatus string

const (
	InternshipStatusNotStarted InternshipStatus = "not_started"
	InternshipStatusInProgress InternshipStatus = "in_progress"
	InternshipStatusFinished   InternshipStatus = "finished"
)

type PushStatus string

const (
	PushStatusPending PushStatus = "pending"
	PushStatusSent    PushStatus = "sent"
	PushStatusFailed  PushStatus = "failed"
)
