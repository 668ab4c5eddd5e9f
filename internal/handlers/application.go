// internal/handlers/application.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/i18n"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/services"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

// POST /applications
func (h *ApplicationHandler) Apply(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	applicantID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	application, err := h.applicationService.Apply(applicantID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "already have") {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyApplicationExists))
			return
		}
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyOfferNotFound))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationSubmitted),
		"application": application,
	})
}

// GET /applications
func (h *ApplicationHandler) GetApplications(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	searchParams := services.ApplicationSearchParams{
		PaginationParams: params,
	}

	// Parse filters
	if offerIDStr := c.Query("offer_id"); offerIDStr != "" {
		if offerID, err := uuid.Parse(offerIDStr); err == nil {
			searchParams.OfferID = &offerID
		}
	}

	if status := c.Query("status"); status != "" {
		appStatus := models.ApplicationStatus(status)
		searchParams.Status = &appStatus
	}

	applications, total, err := h.applicationService.SearchApplications(searchParams, userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(applications, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	application, err := h.applicationService.GetApplication(id, userID)
	if err != nil {
		if strings.Contains(err.Error(), "unauthorized") {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAccessDenied))
			return
		}
		utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyApplicationNotFound))
		return
	}

	utils.SuccessResponse(c, gin.H{
		"application": application,
	})
}

// PUT /applications/:id/accept
func (h *ApplicationHandler) AcceptApplication(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, deciderID, ok := h.decisionParams(c)
	if !ok {
		return
	}

	internship, err := h.applicationService.Accept(id, deciderID)
	if err != nil {
		h.respondDecisionError(c, lang, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyApplicationAccepted),
		"internship": internship,
	})
}

// PUT /applications/:id/deny
func (h *ApplicationHandler) DenyApplication(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, deciderID, ok := h.decisionParams(c)
	if !ok {
		return
	}

	application, err := h.applicationService.Deny(id, deciderID)
	if err != nil {
		h.respondDecisionError(c, lang, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationDenied),
		"application": application,
	})
}

// GET /applications/statistics
func (h *ApplicationHandler) GetStatistics(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	stats, err := h.applicationService.GetStatistics(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"statistics": stats,
	})
}

func (h *ApplicationHandler) decisionParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, uuid.Nil, false
	}

	deciderID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return uuid.Nil, uuid.Nil, false
	}

	return id, deciderID, true
}

func (h *ApplicationHandler) respondDecisionError(c *gin.Context, lang string, err error) {
	if strings.Contains(err.Error(), "not found") {
		utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyApplicationNotFound))
		return
	}
	if strings.Contains(err.Error(), "unauthorized") {
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAccessDenied))
		return
	}
	if strings.Contains(err.Error(), "already processed") {
		utils.ConflictResponse(c, err.Error())
		return
	}
	utils.BadRequestResponse(c, err.Error(), nil)
}
