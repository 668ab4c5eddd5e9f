package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/database"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
)

type ChatService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewChatService(db *gorm.DB, notifications *NotificationService) *ChatService {
	return &ChatService{
		db:            db,
		notifications: notifications,
	}
}

// OpenChat returns the conversation between the two users, creating it if
// needed. A pair of users shares at most one chat regardless of who opened
// it first.
func (s *ChatService) OpenChat(initiatorID, recipientID uuid.UUID) (*models.Chat, error) {
	if initiatorID == recipientID {
		return nil, errors.New("cannot open a chat with yourself")
	}

	var recipient models.User
	if err := s.db.First(&recipient, recipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("recipient not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var chat models.Chat
	err := s.db.Where(
		"(initiator_id = ? AND recipient_id = ?) OR (initiator_id = ? AND recipient_id = ?)",
		initiatorID, recipientID, recipientID, initiatorID,
	).First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	chat = models.Chat{
		InitiatorID: initiatorID,
		RecipientID: recipientID,
	}
	if err := s.db.Create(&chat).Error; err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	return &chat, nil
}

// ListChats returns the user's conversations, most recently updated first.
func (s *ChatService) ListChats(userID uuid.UUID, params utils.PaginationParams) ([]models.Chat, int64, error) {
	query := s.db.Model(&models.Chat{}).
		Preload("Initiator").Preload("Recipient").
		Where("initiator_id = ? OR recipient_id = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count chats: %w", err)
	}

	query = query.Order("updated_at DESC")
	query = utils.ApplyPagination(query, params)

	var chats []models.Chat
	if err := query.Find(&chats).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch chats: %w", err)
	}

	return chats, total, nil
}

// SendMessage appends a message to the chat and queues a push for the other
// participant. Only the two participants may write to the conversation.
func (s *ChatService) SendMessage(chatID, senderID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("message content cannot be empty")
	}
	if len(content) > 4000 {
		return nil, errors.New("message content too long")
	}

	chat, err := s.loadForParticipant(chatID, senderID)
	if err != nil {
		return nil, err
	}

	var sender models.User
	if err := s.db.First(&sender, senderID).Error; err != nil {
		return nil, errors.New("sender not found")
	}

	message := &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		// Touch the chat so conversation lists sort by latest activity.
		if err := tx.Model(chat).Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
			return fmt.Errorf("failed to update chat: %w", err)
		}

		return s.notifications.EnqueuePush(tx, chat.Counterpart(senderID),
			sender.Username, content)
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

// ListMessages returns the chat's messages, newest first.
func (s *ChatService) ListMessages(chatID, userID uuid.UUID, params utils.PaginationParams) ([]models.Message, int64, error) {
	if _, err := s.loadForParticipant(chatID, userID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Message{}).
		Preload("Sender").
		Where("chat_id = ?", chatID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return messages, total, nil
}

func (s *ChatService) loadForParticipant(chatID, userID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := s.db.First(&chat, chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("chat not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if chat.InitiatorID != userID && chat.RecipientID != userID {
		return nil, errors.New("unauthorized to access this chat")
	}

	return &chat, nil
}
