package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
)

type OfferService struct {
	db *gorm.DB
}

type CreateOfferRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	Location    string   `json:"location,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

type OfferSearchParams struct {
	utils.PaginationParams
	CompanyID *uuid.UUID          `json:"company_id,omitempty"`
	Status    *models.OfferStatus `json:"status,omitempty"`
	Skill     string              `json:"skill,omitempty"`
}

func NewOfferService(db *gorm.DB) *OfferService {
	return &OfferService{db: db}
}

func (s *OfferService) CreateOffer(companyID uuid.UUID, req *CreateOfferRequest) (*models.Offer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var company models.User
	if err := s.db.First(&company, companyID).Error; err != nil {
		return nil, errors.New("company not found")
	}
	if company.UserType != models.UserTypeCompany {
		return nil, errors.New("only companies can publish offers")
	}
	if company.Status != models.UserStatusActive {
		return nil, errors.New("company account is not active")
	}

	offer := &models.Offer{
		CompanyID:   companyID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Duration:    req.Duration,
		Skills:      pq.StringArray(req.Skills),
		Status:      models.OfferStatusOpen,
	}

	if err := s.db.Create(offer).Error; err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	return offer, nil
}

func (s *OfferService) GetOffer(id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := s.db.Preload("Company").First(&offer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("offer not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &offer, nil
}

func (s *OfferService) SearchOffers(params OfferSearchParams) ([]models.Offer, int64, error) {
	query := s.db.Model(&models.Offer{}).Preload("Company")

	if params.CompanyID != nil {
		query = query.Where("company_id = ?", *params.CompanyID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	if params.Location != "" {
		query = query.Where("location ILIKE ?", "%"+params.Location+"%")
	}

	if params.Skill != "" {
		query = query.Where("? = ANY(skills)", params.Skill)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count offers: %w", err)
	}

	allowedSortFields := []string{"created_at", "title", "location"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var offers []models.Offer
	if err := query.Find(&offers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch offers: %w", err)
	}

	return offers, total, nil
}

// DeleteOffer removes an offer posted by the calling company. Offers are
// immutable after creation, so deletion is the only mutation exposed.
func (s *OfferService) DeleteOffer(offerID, companyID uuid.UUID) error {
	var offer models.Offer
	if err := s.db.First(&offer, offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("offer not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if offer.CompanyID != companyID {
		return errors.New("unauthorized to delete offer")
	}

	// Accepted applications became internships; those keep their own offer
	// reference and survive the soft delete.
	if err := s.db.Delete(&offer).Error; err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}

	return nil
}
