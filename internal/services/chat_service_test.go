package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
)

type ChatServiceTestSuite struct {
	suite.Suite
	db    *gorm.DB
	chats *ChatService

	intern  *models.User
	company *models.User
}

func (s *ChatServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.chats = NewChatService(s.db, NewNotificationService(s.db, newTestConfig()))

	s.intern = createTestUser(s.T(), s.db, "hugo", models.UserTypeIntern)
	s.company = createTestUser(s.T(), s.db, "acme", models.UserTypeCompany)
}

func (s *ChatServiceTestSuite) TestOpenChatIsIdempotentPerPair() {
	chat, err := s.chats.OpenChat(s.intern.ID, s.company.ID)
	require.NoError(s.T(), err)

	// Opening from either side lands on the same conversation.
	same, err := s.chats.OpenChat(s.company.ID, s.intern.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), chat.ID, same.ID)

	var count int64
	s.db.Model(&models.Chat{}).Count(&count)
	assert.Equal(s.T(), int64(1), count)

	_, err = s.chats.OpenChat(s.intern.ID, s.intern.ID)
	assert.EqualError(s.T(), err, "cannot open a chat with yourself")
}

func (s *ChatServiceTestSuite) TestSendMessage() {
	chat, err := s.chats.OpenChat(s.intern.ID, s.company.ID)
	require.NoError(s.T(), err)

	message, err := s.chats.SendMessage(chat.ID, s.intern.ID, "  Bonjour, est-ce toujours disponible ?  ")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Bonjour, est-ce toujours disponible ?", message.Content)

	// The other participant gets a push, titled with the sender's name.
	var outbox models.PushOutbox
	require.NoError(s.T(), s.db.Where("target_user_id = ?", s.company.ID).First(&outbox).Error)
	assert.Equal(s.T(), s.intern.Username, outbox.Title)

	_, err = s.chats.SendMessage(chat.ID, s.intern.ID, "   ")
	assert.EqualError(s.T(), err, "message content cannot be empty")

	_, err = s.chats.SendMessage(chat.ID, s.intern.ID, strings.Repeat("a", 4001))
	assert.EqualError(s.T(), err, "message content too long")

	stranger := createTestUser(s.T(), s.db, "stranger", models.UserTypeIntern)
	_, err = s.chats.SendMessage(chat.ID, stranger.ID, "hello")
	assert.EqualError(s.T(), err, "unauthorized to access this chat")
}

func (s *ChatServiceTestSuite) TestListMessagesNewestFirst() {
	chat, err := s.chats.OpenChat(s.intern.ID, s.company.ID)
	require.NoError(s.T(), err)

	for _, content := range []string{"first", "second", "third"} {
		_, err := s.chats.SendMessage(chat.ID, s.intern.ID, content)
		require.NoError(s.T(), err)
	}

	messages, total, err := s.chats.ListMessages(chat.ID, s.company.ID, utils.PaginationParams{Page: 1, Limit: 2})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(3), total)
	require.Len(s.T(), messages, 2)
	assert.Equal(s.T(), "third", messages[0].Content)

	stranger := createTestUser(s.T(), s.db, "stranger", models.UserTypeCompany)
	_, _, err = s.chats.ListMessages(chat.ID, stranger.ID, utils.PaginationParams{Page: 1, Limit: 10})
	assert.EqualError(s.T(), err, "unauthorized to access this chat")
}

func (s *ChatServiceTestSuite) TestListChats() {
	other := createTestUser(s.T(), s.db, "polytech", models.UserTypeInstitution)

	_, err := s.chats.OpenChat(s.intern.ID, s.company.ID)
	require.NoError(s.T(), err)
	_, err = s.chats.OpenChat(s.intern.ID, other.ID)
	require.NoError(s.T(), err)

	_, total, err := s.chats.ListChats(s.intern.ID, utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), total)

	_, total, err = s.chats.ListChats(s.company.ID, utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), total)
}

func TestChatServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChatServiceTestSuite))
}
