package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/config"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
)

// PushSender delivers one push message to a set of device tokens.
type PushSender interface {
	Send(ctx context.Context, tokens []string, title, body string) error
}

// fcmSender posts legacy FCM-style payloads to the configured endpoint.
type fcmSender struct {
	endpoint  string
	serverKey string
	client    *http.Client
}

func NewFCMSender(cfg config.PushConfig) PushSender {
	return &fcmSender{
		endpoint:  cfg.Endpoint,
		serverKey: cfg.ServerKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmPayload struct {
	RegistrationIDs []string        `json:"registration_ids"`
	Notification    fcmNotification `json:"notification"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (f *fcmSender) Send(ctx context.Context, tokens []string, title, body string) error {
	if f.serverKey == "" {
		// Push not configured; treat as delivered so local setups drain the queue.
		logrus.WithField("title", title).Debug("Push suppressed (server key not configured)")
		return nil
	}

	payload, err := json.Marshal(fcmPayload{
		RegistrationIDs: tokens,
		Notification:    fcmNotification{Title: title, Body: body},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+f.serverKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}

	return nil
}

// PushDispatcher drains the push outbox on an interval, delivering pending
// rows at least once. A row whose delivery keeps failing is parked as failed
// after MaxAttempts.
type PushDispatcher struct {
	db          *gorm.DB
	sender      PushSender
	interval    time.Duration
	maxAttempts int
}

func NewPushDispatcher(db *gorm.DB, sender PushSender, cfg config.PushConfig) *PushDispatcher {
	interval := time.Duration(cfg.PollInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	return &PushDispatcher{
		db:          db,
		sender:      sender,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Start blocks and drains the outbox until ctx is cancelled.
func (d *PushDispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	logrus.Info("Push dispatcher started")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Push dispatcher stopped")
			return
		case <-ticker.C:
			d.DrainOnce(ctx)
		}
	}
}

// DrainOnce processes one batch of pending outbox rows.
func (d *PushDispatcher) DrainOnce(ctx context.Context) {
	var pending []models.PushOutbox
	if err := d.db.Where("status = ?", models.PushStatusPending).
		Order("created_at").Limit(50).Find(&pending).Error; err != nil {
		logrus.WithError(err).Error("Failed to load push outbox")
		return
	}

	for i := range pending {
		d.deliver(ctx, &pending[i])
	}
}

func (d *PushDispatcher) deliver(ctx context.Context, row *models.PushOutbox) {
	var tokens []string
	if err := d.db.Model(&models.DeviceToken{}).
		Where("user_id = ?", row.TargetUserID).
		Pluck("token", &tokens).Error; err != nil {
		logrus.WithError(err).Error("Failed to load device tokens")
		return
	}

	var sendErr error
	if len(tokens) > 0 {
		sendErr = d.sender.Send(ctx, tokens, row.Title, row.Body)
	}
	// No registered device is not a failure: the in-app notification remains.

	updates := map[string]interface{}{
		"attempts": row.Attempts + 1,
	}

	if sendErr != nil {
		logrus.WithError(sendErr).WithField("outbox_id", row.ID).Warn("Push delivery failed")
		updates["last_error"] = sendErr.Error()
		if row.Attempts+1 >= d.maxAttempts {
			updates["status"] = models.PushStatusFailed
		}
	} else {
		now := time.Now()
		updates["status"] = models.PushStatusSent
		updates["sent_at"] = &now
	}

	if err := d.db.Model(&models.PushOutbox{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
		logrus.WithError(err).Error("Failed to update push outbox row")
	}
}
