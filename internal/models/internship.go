package models

import (
	"github.com/google/uuid"
)

// Internship is the placement created when a company accepts an application.
// It carries the agreement approval state: Step is the position in the fixed
// approval sequence (0..4), Status the coarser lifecycle phase, and
// AgreementName the display name of the latest uploaded agreement document
// (overwritten at each upload, no version history kept).
//
// Version is bumped on every step transition; writers compare-and-swap on it
// so concurrent actors are detected instead of silently overwritten.
type Internship struct {
	BaseModel
	OfferID       uuid.UUID        `json:"offer_id" gorm:"type:uuid;not null;index"`
	InternID      uuid.UUID        `json:"intern_id" gorm:"type:uuid;not null;index"`
	InstitutionID uuid.UUID        `json:"institution_id" gorm:"type:uuid;not null;index"`
	Step          int              `json:"step" gorm:"not null;default:0"`
	Status        InternshipStatus `json:"status" gorm:"type:varchar(20);default:'not_started';index"`
	AgreementName string           `json:"agreement_name,omitempty" gorm:"size:255"`
	Version       int64            `json:"version" gorm:"not null;default:0"`

	// Relationships
	Offer       Offer `json:"offer,omitempty" gorm:"foreignKey:OfferID"`
	Intern      User  `json:"intern,omitempty" gorm:"foreignKey:InternID"`
	Institution User  `json:"institution,omitempty" gorm:"foreignKey:InstitutionID"`
}
