package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/config"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
)

// NotificationService persists in-app notifications and queues push
// messages. Push rows are written through EnqueuePush inside the caller's
// transaction; actual delivery happens later in the outbox dispatcher, so a
// delivery failure can never fail or roll back the state change that
// motivated it.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: cfg,
	}
}

// Notify writes the in-app notification and the matching push outbox row in
// the given transaction.
func (s *NotificationService) Notify(tx *gorm.DB, targetUserID uuid.UUID, notifType, title, body string, resourceType string, resourceID *uuid.UUID) error {
	notification := &models.Notification{
		UserID:              targetUserID,
		Type:                notifType,
		Title:               title,
		Body:                body,
		RelatedResourceType: resourceType,
		RelatedResourceID:   resourceID,
	}
	if err := tx.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return s.EnqueuePush(tx, targetUserID, title, body)
}

// EnqueuePush records a pending push message for the dispatcher.
func (s *NotificationService) EnqueuePush(tx *gorm.DB, targetUserID uuid.UUID, title, body string) error {
	outbox := &models.PushOutbox{
		TargetUserID: targetUserID,
		Title:        title,
		Body:         body,
		Status:       models.PushStatusPending,
	}
	if err := tx.Create(outbox).Error; err != nil {
		return fmt.Errorf("failed to enqueue push message: %w", err)
	}
	return nil
}

func (s *NotificationService) ListForUser(userID uuid.UUID, params utils.PaginationParams) ([]models.Notification, int64, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "read_at"})
	query = utils.ApplyPagination(query, params)

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	var notification models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("notification not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if notification.ReadAt != nil {
		return nil
	}

	return s.db.Model(&notification).Update("read_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// SendWelcomeEmail greets a freshly registered user. Best effort: the
// registration itself never depends on it.
func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	data := map[string]interface{}{
		"Username":     user.Username,
		"PlatformName": "StageConnect",
	}

	body, err := s.renderTemplate(welcomeEmailBody, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, "Welcome to StageConnect", body)
}

func (s *NotificationService) SendPasswordResetEmail(user *models.User, resetToken string) error {
	data := map[string]interface{}{
		"Username":  user.Username,
		"Token":     resetToken,
		"ExpiresIn": "1 hour",
	}

	body, err := s.renderTemplate(passwordResetEmailBody, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, "Password Reset Request", body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithField("to", to).Infof("Email suppressed (SMTP not configured): %s", subject)
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

const welcomeEmailBody = `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Username}}!</h2>
	<p>Thank you for joining {{.PlatformName}}. You can now browse internship offers, apply, and track your agreement from the app.</p>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`

const passwordResetEmailBody = `
<!DOCTYPE html>
<html>
<body>
	<h2>Password reset</h2>
	<p>Hello {{.Username}},</p>
	<p>Use the code below in the app to choose a new password. It expires in {{.ExpiresIn}}.</p>
	<p><strong>{{.Token}}</strong></p>
	<p>If you did not request this, you can ignore this email.</p>
</body>
</html>`
