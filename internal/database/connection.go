package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/config"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
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
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_type_status ON users(user_type, status)",

		// Offer indexes
		"CREATE INDEX IF NOT EXISTS idx_offers_company ON offers(company_id)",
		"CREATE INDEX IF NOT EXISTS idx_offers_status ON offers(status)",
		"CREATE INDEX IF NOT EXISTS idx_offers_created_at ON offers(created_at DESC)",

		// Application indexes
		"CREATE INDEX IF NOT EXISTS idx_applications_applicant ON applications(applicant_id)",
		"CREATE INDEX IF NOT EXISTS idx_applications_offer_status ON applications(offer_id, status)",

		// Internship indexes
		"CREATE INDEX IF NOT EXISTS idx_internships_intern ON internships(intern_id)",
		"CREATE INDEX IF NOT EXISTS idx_internships_institution_step ON internships(institution_id, step)",
		"CREATE INDEX IF NOT EXISTS idx_internships_status ON internships(status)",

		// Chat indexes
		"CREATE INDEX IF NOT EXISTS idx_chats_participants ON chats(initiator_id, recipient_id)",
		"CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at)",

		// Notification indexes
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, read_at)",
		"CREATE INDEX IF NOT EXISTS idx_push_outbox_status ON push_outboxes(status, created_at)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",

		// Full-text search over offers
		"CREATE INDEX IF NOT EXISTS idx_offers_search ON offers USING GIN(to_tsvector('french', title || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
