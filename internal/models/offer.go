package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Offer is an internship opportunity posted by a company. Offers are
// immutable after creation except for deletion.
type Offer struct {
	BaseModel
	CompanyID   uuid.UUID      `json:"company_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Location    string         `json:"location" gorm:"size:255;index"`
	Duration    string         `json:"duration" gorm:"size:100"`
	Skills      pq.StringArray `json:"skills" gorm:"type:text[]"`
	Status      OfferStatus    `json:"status" gorm:"type:varchar(20);default:'open';index"`

	// Relationships
	Company      User          `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Applications []Application `json:"applications,omitempty" gorm:"foreignKey:OfferID"`
}
