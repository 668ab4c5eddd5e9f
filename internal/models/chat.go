package models

import (
	"github.com/google/uuid"
)

// Chat is a conversation between two users, typically an intern and the
// company or institution they are dealing with.
type Chat struct {
	BaseModel
	InitiatorID uuid.UUID `json:"initiator_id" gorm:"type:uuid;not null;index"`
	RecipientID uuid.UUID `json:"recipient_id" gorm:"type:uuid;not null;index"`

	// Relationships
	Initiator User      `json:"initiator,omitempty" gorm:"foreignKey:InitiatorID"`
	Recipient User      `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	Messages  []Message `json:"messages,omitempty" gorm:"foreignKey:ChatID"`
}

// Counterpart returns the other participant of the chat.
func (c *Chat) Counterpart(userID uuid.UUID) uuid.UUID {
	if c.InitiatorID == userID {
		return c.RecipientID
	}
	return c.InitiatorID
}

type Message struct {
	BaseModel
	ChatID   uuid.UUID `json:"chat_id" gorm:"type:uuid;not null;index"`
	SenderID uuid.UUID `json:"sender_id" gorm:"type:uuid;not null;index"`
	Content  string    `json:"content" gorm:"type:text;not null"`

	// Relationships
	Chat   Chat `json:"-" gorm:"foreignKey:ChatID"`
	Sender User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}
