// internal/handlers/internship.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/i18n"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/services"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/workflow"
)

// InternshipHandler exposes the agreement approval sequence. Each move is its
// own endpoint; the service validates turn order and rejects stale writers.
type InternshipHandler struct {
	agreementService *services.AgreementService
}

func NewInternshipHandler(agreementService *services.AgreementService) *InternshipHandler {
	return &InternshipHandler{
		agreementService: agreementService,
	}
}

// GET /internships
func (h *InternshipHandler) GetInternships(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	internships, total, err := h.agreementService.ListInternships(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(internships, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /internships/:id
func (h *InternshipHandler) GetInternship(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid internship ID", nil)
		return
	}

	internship, err := h.agreementService.GetInternship(id, userID)
	if err != nil {
		if strings.Contains(err.Error(), "unauthorized") {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAccessDenied))
			return
		}
		utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyInternshipNotFound))
		return
	}

	utils.SuccessResponse(c, gin.H{
		"internship": internship,
		"step_name":  workflow.Step(internship.Step).String(),
	})
}

// POST /internships/:id/agreement
func (h *InternshipHandler) UploadAgreement(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid internship ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("agreement")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	internship, err := h.agreementService.UploadAgreement(c.Request.Context(), id, userID, header.Filename, content)
	if err != nil {
		h.respondWorkflowError(c, lang, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyAgreementUploaded),
		"internship": internship,
	})
}

// GET /internships/:id/agreement/:filename
func (h *InternshipHandler) DownloadAgreement(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid internship ID", nil)
		return
	}

	fileName := c.Param("filename")
	content, err := h.agreementService.FetchAgreement(c.Request.Context(), id, userID, fileName)
	if err != nil {
		if strings.Contains(err.Error(), "unauthorized") {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAccessDenied))
			return
		}
		utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyFileNotFound))
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

// PUT /internships/:id/submit
func (h *InternshipHandler) Submit(c *gin.Context) {
	h.move(c, i18n.KeyAgreementSubmitted, h.agreementService.Submit)
}

// PUT /internships/:id/accept
func (h *InternshipHandler) Accept(c *gin.Context) {
	h.move(c, i18n.KeyAgreementAccepted, h.agreementService.Accept)
}

// PUT /internships/:id/refuse
func (h *InternshipHandler) Refuse(c *gin.Context) {
	h.move(c, i18n.KeyAgreementRefused, h.agreementService.Refuse)
}

// PUT /internships/:id/finalize
func (h *InternshipHandler) Finalize(c *gin.Context) {
	h.move(c, i18n.KeyAgreementFinalized, h.agreementService.Finalize)
}

func (h *InternshipHandler) move(c *gin.Context, messageKey string, fn func(uuid.UUID, uuid.UUID) (*models.Internship, error)) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid internship ID", nil)
		return
	}

	internship, err := fn(id, userID)
	if err != nil {
		h.respondWorkflowError(c, lang, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, messageKey),
		"internship": internship,
		"step":       internship.Step,
		"step_name":  workflow.Step(internship.Step).String(),
	})
}

func (h *InternshipHandler) respondWorkflowError(c *gin.Context, lang string, err error) {
	switch {
	case errors.Is(err, workflow.ErrActorNotAllowed):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAgreementNotYourTurn))
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, workflow.ErrUnknownAction):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAgreementInvalidTransition))
	case errors.Is(err, services.ErrVersionConflict):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAgreementConflict))
	case strings.Contains(err.Error(), "not found"):
		utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyInternshipNotFound))
	case strings.Contains(err.Error(), "unauthorized"):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAccessDenied))
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}

// currentUserID pulls the authenticated user out of the request context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}

	return userID, true
}
