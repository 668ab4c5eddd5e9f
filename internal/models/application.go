package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is an intern's request to be considered for an offer. The
// company moves it to accepted or denied; accepting creates the Internship.
// The application record is removed once the agreement is finalized.
type Application struct {
	BaseModel
	OfferID     uuid.UUID         `json:"offer_id" gorm:"type:uuid;not null;index"`
	ApplicantID uuid.UUID         `json:"applicant_id" gorm:"type:uuid;not null;index"`
	Status      ApplicationStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Message     string            `json:"message,omitempty" gorm:"type:text"`
	CVName      string            `json:"cv_name,omitempty" gorm:"size:255"`
	DecidedAt   *time.Time        `json:"decided_at"`
	DecidedBy   *uuid.UUID        `json:"decided_by" gorm:"type:uuid"`

	// Relationships
	Offer     Offer `json:"offer,omitempty" gorm:"foreignKey:OfferID"`
	Applicant User  `json:"applicant,omitempty" gorm:"foreignKey:ApplicantID"`
	Decider   *User `json:"decider,omitempty" gorm:"foreignKey:DecidedBy"`
}
