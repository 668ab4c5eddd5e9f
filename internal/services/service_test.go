package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/config"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
)

var testDBSeq int64

// newTestDB opens a private in-memory database and migrates the full schema.
// Each call gets its own named memory database so suites cannot see each
// other's rows.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.DeviceToken{},
		&models.Offer{},
		&models.Application{},
		&models.Internship{},
		&models.Chat{},
		&models.Message{},
		&models.Notification{},
		&models.PushOutbox{},
		&models.AuditLog{},
	))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{}
}

func createTestUser(t *testing.T, db *gorm.DB, username string, userType models.UserType) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		UserType: userType,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Sup3rSecret!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestIntern(t *testing.T, db *gorm.DB, username string, institutionID uuid.UUID) *models.User {
	t.Helper()

	intern := createTestUser(t, db, username, models.UserTypeIntern)
	require.NoError(t, db.Model(intern).Update("institution_id", institutionID).Error)
	intern.InstitutionID = &institutionID
	return intern
}

func createTestOffer(t *testing.T, db *gorm.DB, companyID uuid.UUID, title string) *models.Offer {
	t.Helper()

	offer := &models.Offer{
		CompanyID:   companyID,
		Title:       title,
		Description: "Six month internship",
		Location:    "Montpellier",
		Duration:    "6 months",
		Status:      models.OfferStatusOpen,
	}
	require.NoError(t, db.Create(offer).Error)
	return offer
}
