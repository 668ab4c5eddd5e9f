package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	UserType     UserType   `json:"user_type" gorm:"type:varchar(20);not null"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData  JSONB      `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// InstitutionID links an intern to their educational institution. The
	// agreement workflow routes institution-side actions through it.
	InstitutionID *uuid.UUID `json:"institution_id,omitempty" gorm:"type:uuid;index"`

	// Relationships
	Institution  *User         `json:"institution,omitempty" gorm:"foreignKey:InstitutionID"`
	Offers       []Offer       `json:"offers,omitempty" gorm:"foreignKey:CompanyID"`
	Applications []Application `json:"applications,omitempty" gorm:"foreignKey:ApplicantID"`
	Internships  []Internship  `json:"internships,omitempty" gorm:"foreignKey:InternID"`
	DeviceTokens []DeviceToken `json:"device_tokens,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// DeviceToken is a push-notification registration for one of the user's
// devices. A user may hold several (phone, tablet).
type DeviceToken struct {
	BaseModel
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Token    string    `json:"token" gorm:"size:512;not null;uniqueIndex"`
	Platform string    `json:"platform" gorm:"size:20"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
