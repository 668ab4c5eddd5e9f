package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/config"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
)

type stubSender struct {
	calls [][]string
	err   error
}

func (s *stubSender) Send(_ context.Context, tokens []string, _, _ string) error {
	s.calls = append(s.calls, tokens)
	return s.err
}

func enqueueTestPush(t *testing.T, db *gorm.DB, notifications *NotificationService, target *models.User) *models.PushOutbox {
	t.Helper()

	require.NoError(t, notifications.EnqueuePush(db, target.ID, "Internship agreement", "ping"))

	var row models.PushOutbox
	require.NoError(t, db.Where("target_user_id = ?", target.ID).First(&row).Error)
	return &row
}

func TestPushDispatcherDeliversPending(t *testing.T) {
	db := newTestDB(t)
	notifications := NewNotificationService(db, newTestConfig())

	user := createTestUser(t, db, "hugo", models.UserTypeIntern)
	require.NoError(t, db.Create(&models.DeviceToken{UserID: user.ID, Token: "tok-1", Platform: "android"}).Error)
	require.NoError(t, db.Create(&models.DeviceToken{UserID: user.ID, Token: "tok-2", Platform: "ios"}).Error)

	row := enqueueTestPush(t, db, notifications, user)

	sender := &stubSender{}
	dispatcher := NewPushDispatcher(db, sender, config.PushConfig{MaxAttempts: 3})
	dispatcher.DrainOnce(context.Background())

	require.Len(t, sender.calls, 1)
	assert.ElementsMatch(t, []string{"tok-1", "tok-2"}, sender.calls[0])

	var updated models.PushOutbox
	require.NoError(t, db.First(&updated, row.ID).Error)
	assert.Equal(t, models.PushStatusSent, updated.Status)
	assert.Equal(t, 1, updated.Attempts)
	assert.NotNil(t, updated.SentAt)

	// A drained row is not delivered twice.
	dispatcher.DrainOnce(context.Background())
	assert.Len(t, sender.calls, 1)
}

func TestPushDispatcherRetriesThenParksFailures(t *testing.T) {
	db := newTestDB(t)
	notifications := NewNotificationService(db, newTestConfig())

	user := createTestUser(t, db, "hugo", models.UserTypeIntern)
	require.NoError(t, db.Create(&models.DeviceToken{UserID: user.ID, Token: "tok-1", Platform: "android"}).Error)

	row := enqueueTestPush(t, db, notifications, user)

	sender := &stubSender{err: errors.New("endpoint unreachable")}
	dispatcher := NewPushDispatcher(db, sender, config.PushConfig{MaxAttempts: 2})

	dispatcher.DrainOnce(context.Background())
	var updated models.PushOutbox
	require.NoError(t, db.First(&updated, row.ID).Error)
	assert.Equal(t, models.PushStatusPending, updated.Status)
	assert.Equal(t, 1, updated.Attempts)
	assert.Contains(t, updated.LastError, "endpoint unreachable")

	dispatcher.DrainOnce(context.Background())
	require.NoError(t, db.First(&updated, row.ID).Error)
	assert.Equal(t, models.PushStatusFailed, updated.Status)
	assert.Equal(t, 2, updated.Attempts)

	// Parked rows are left alone.
	dispatcher.DrainOnce(context.Background())
	assert.Len(t, sender.calls, 2)
}

func TestPushDispatcherSkipsUsersWithoutDevices(t *testing.T) {
	db := newTestDB(t)
	notifications := NewNotificationService(db, newTestConfig())

	user := createTestUser(t, db, "hugo", models.UserTypeIntern)
	row := enqueueTestPush(t, db, notifications, user)

	sender := &stubSender{}
	dispatcher := NewPushDispatcher(db, sender, config.PushConfig{MaxAttempts: 3})
	dispatcher.DrainOnce(context.Background())

	// Nothing to deliver to, but the row is settled, not retried forever.
	assert.Empty(t, sender.calls)

	var updated models.PushOutbox
	require.NoError(t, db.First(&updated, row.ID).Error)
	assert.Equal(t, models.PushStatusSent, updated.Status)
}
