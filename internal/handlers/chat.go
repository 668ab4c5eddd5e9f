// internal/handlers/chat.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/i18n"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/services"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// POST /chats
func (h *ChatHandler) OpenChat(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	chat, err := h.chatService.OpenChat(userID, req.RecipientID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyUserNotFound))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyChatCreated),
		"chat":    chat,
	})
}

// GET /chats
func (h *ChatHandler) GetChats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	chats, total, err := h.chatService.ListChats(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(chats, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /chats/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid chat ID", nil)
		return
	}

	var req struct {
		Content string `json:"content" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	message, err := h.chatService.SendMessage(chatID, userID, req.Content)
	if err != nil {
		h.respondChatError(c, lang, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message_sent": i18n.T(lang, i18n.KeyMessageSent),
		"data":         message,
	})
}

// GET /chats/:id/messages
func (h *ChatHandler) GetMessages(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid chat ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	messages, total, err := h.chatService.ListMessages(chatID, userID, params)
	if err != nil {
		h.respondChatError(c, lang, err)
		return
	}

	result := utils.CreatePaginationResult(messages, total, params)
	utils.PaginatedResponse(c, result)
}

func (h *ChatHandler) respondChatError(c *gin.Context, lang string, err error) {
	if strings.Contains(err.Error(), "not found") {
		utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyChatNotFound))
		return
	}
	if strings.Contains(err.Error(), "unauthorized") {
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyChatNotAMember))
		return
	}
	utils.BadRequestResponse(c, err.Error(), nil)
}
