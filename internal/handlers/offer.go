// internal/handlers/offer.go
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

type OfferHandler struct {
	offerService *services.OfferService
}

func NewOfferHandler(offerService *services.OfferService) *OfferHandler {
	return &OfferHandler{
		offerService: offerService,
	}
}

// POST /offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	companyID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	offer, err := h.offerService.CreateOffer(companyID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOfferCreated),
		"offer":   offer,
	})
}

// GET /offers
func (h *OfferHandler) SearchOffers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.OfferSearchParams{
		PaginationParams: params,
	}

	// Parse filters
	if companyIDStr := c.Query("company_id"); companyIDStr != "" {
		if companyID, err := uuid.Parse(companyIDStr); err == nil {
			searchParams.CompanyID = &companyID
		}
	}

	if status := c.Query("status"); status != "" {
		offerStatus := models.OfferStatus(status)
		searchParams.Status = &offerStatus
	}

	searchParams.Skill = c.Query("skill")

	offers, total, err := h.offerService.SearchOffers(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(offers, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /offers/:id
func (h *OfferHandler) GetOffer(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer ID", nil)
		return
	}

	offer, err := h.offerService.GetOffer(id)
	if err != nil {
		utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyOfferNotFound))
		return
	}

	utils.SuccessResponse(c, gin.H{
		"offer": offer,
	})
}

// DELETE /offers/:id
func (h *OfferHandler) DeleteOffer(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	companyID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid offer ID", nil)
		return
	}

	if err := h.offerService.DeleteOffer(id, companyID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyOfferNotFound))
			return
		}
		if strings.Contains(err.Error(), "unauthorized") {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAccessDenied))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOfferDeleted),
	})
}
