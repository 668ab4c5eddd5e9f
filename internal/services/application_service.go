package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/database"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
)

type ApplicationService struct {
	db            *gorm.DB
	notifications *NotificationService
}

type ApplyRequest struct {
	OfferID uuid.UUID `json:"offer_id" validate:"required"`
	Message string    `json:"message,omitempty"`
	CVName  string    `json:"cv_name,omitempty"`
}

type ApplicationSearchParams struct {
	utils.PaginationParams
	OfferID     *uuid.UUID                `json:"offer_id,omitempty"`
	ApplicantID *uuid.UUID                `json:"applicant_id,omitempty"`
	Status      *models.ApplicationStatus `json:"status,omitempty"`
}

func NewApplicationService(db *gorm.DB, notifications *NotificationService) *ApplicationService {
	return &ApplicationService{
		db:            db,
		notifications: notifications,
	}
}

// Apply creates a pending application. One live (pending or accepted)
// application per (user, offer) pair is enforced here, at the service
// boundary, since the store itself carries no uniqueness constraint.
func (s *ApplicationService) Apply(applicantID uuid.UUID, req *ApplyRequest) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var applicant models.User
	if err := s.db.First(&applicant, applicantID).Error; err != nil {
		return nil, errors.New("applicant not found")
	}
	if applicant.UserType != models.UserTypeIntern {
		return nil, errors.New("only interns can apply to offers")
	}
	if applicant.Status != models.UserStatusActive {
		return nil, errors.New("applicant account is not active")
	}

	var offer models.Offer
	if err := s.db.Preload("Company").First(&offer, req.OfferID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("offer not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if offer.Status != models.OfferStatusOpen {
		return nil, errors.New("offer is closed")
	}

	var existing models.Application
	if err := s.db.Where("offer_id = ? AND applicant_id = ? AND status IN (?, ?)",
		req.OfferID, applicantID, models.ApplicationStatusPending, models.ApplicationStatusAccepted).
		First(&existing).Error; err == nil {
		if existing.Status == models.ApplicationStatusAccepted {
			return nil, errors.New("you already have an accepted application for this offer")
		}
		return nil, errors.New("you already have a pending application for this offer")
	}

	application := &models.Application{
		OfferID:     req.OfferID,
		ApplicantID: applicantID,
		Status:      models.ApplicationStatusPending,
		Message:     req.Message,
		CVName:      req.CVName,
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(application).Error; err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		return s.notifications.Notify(tx, offer.CompanyID, "application_received",
			"New application",
			fmt.Sprintf("%s applied to your offer \"%s\"", applicant.Username, offer.Title),
			"application", &application.ID)
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Offer").Preload("Applicant").First(application, application.ID)
	return application, nil
}

// Accept moves a pending application to accepted and creates the internship
// record that the agreement workflow will drive, in the same transaction.
func (s *ApplicationService) Accept(applicationID, deciderID uuid.UUID) (*models.Internship, error) {
	application, err := s.loadForDecision(applicationID, deciderID)
	if err != nil {
		return nil, err
	}

	var intern models.User
	if err := s.db.First(&intern, application.ApplicantID).Error; err != nil {
		return nil, errors.New("applicant not found")
	}
	if intern.InstitutionID == nil {
		return nil, errors.New("applicant has no institution linked to their account")
	}

	internship := &models.Internship{
		OfferID:       application.OfferID,
		InternID:      application.ApplicantID,
		InstitutionID: *intern.InstitutionID,
		Step:          0,
		Status:        models.InternshipStatusNotStarted,
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		now := time.Now()
		application.Status = models.ApplicationStatusAccepted
		application.DecidedAt = &now
		application.DecidedBy = &deciderID

		if err := tx.Save(application).Error; err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		if err := tx.Create(internship).Error; err != nil {
			return fmt.Errorf("failed to create internship: %w", err)
		}

		return s.notifications.Notify(tx, application.ApplicantID, "application_accepted",
			"Application accepted",
			fmt.Sprintf("Your application to \"%s\" was accepted. Upload your internship agreement to begin the approval process.", application.Offer.Title),
			"internship", &internship.ID)
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Offer").Preload("Intern").Preload("Institution").First(internship, internship.ID)
	return internship, nil
}

// Deny moves a pending application to its terminal denied state.
func (s *ApplicationService) Deny(applicationID, deciderID uuid.UUID) (*models.Application, error) {
	application, err := s.loadForDecision(applicationID, deciderID)
	if err != nil {
		return nil, err
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		now := time.Now()
		application.Status = models.ApplicationStatusDenied
		application.DecidedAt = &now
		application.DecidedBy = &deciderID

		if err := tx.Save(application).Error; err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		return s.notifications.Notify(tx, application.ApplicantID, "application_denied",
			"Application denied",
			fmt.Sprintf("Your application to \"%s\" was denied.", application.Offer.Title),
			"application", &application.ID)
	})
	if err != nil {
		return nil, err
	}

	return application, nil
}

func (s *ApplicationService) loadForDecision(applicationID, deciderID uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := s.db.Preload("Offer").Preload("Applicant").First(&application, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("application not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if application.Offer.CompanyID != deciderID {
		return nil, errors.New("unauthorized to decide on this application")
	}

	if application.Status != models.ApplicationStatusPending {
		return nil, errors.New("application already processed")
	}

	return &application, nil
}

func (s *ApplicationService) GetApplication(id, userID uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := s.db.Preload("Offer").Preload("Offer.Company").Preload("Applicant").
		First(&application, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("application not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if application.ApplicantID != userID && application.Offer.CompanyID != userID {
		return nil, errors.New("unauthorized to view application")
	}

	return &application, nil
}

func (s *ApplicationService) SearchApplications(params ApplicationSearchParams, userID uuid.UUID) ([]models.Application, int64, error) {
	query := s.db.Model(&models.Application{}).
		Preload("Offer").Preload("Applicant")

	// Non-filtered callers only see their own side: applications they made,
	// or applications to their offers.
	query = query.Where("applicant_id = ? OR offer_id IN (SELECT id FROM offers WHERE company_id = ?)",
		userID, userID)

	if params.OfferID != nil {
		query = query.Where("offer_id = ?", *params.OfferID)
	}

	if params.ApplicantID != nil {
		query = query.Where("applicant_id = ?", *params.ApplicantID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status", "decided_at"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var applications []models.Application
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch applications: %w", err)
	}

	return applications, total, nil
}

func (s *ApplicationService) GetStatistics(userID uuid.UUID) (map[string]interface{}, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, errors.New("user not found")
	}

	stats := make(map[string]interface{})

	switch user.UserType {
	case models.UserTypeIntern:
		var internStats struct {
			TotalApplications    int64 `json:"total_applications"`
			PendingApplications  int64 `json:"pending_applications"`
			AcceptedApplications int64 `json:"accepted_applications"`
			DeniedApplications   int64 `json:"denied_applications"`
			ActiveInternships    int64 `json:"active_internships"`
		}

		s.db.Model(&models.Application{}).Where("applicant_id = ?", userID).Count(&internStats.TotalApplications)
		s.db.Model(&models.Application{}).Where("applicant_id = ? AND status = ?", userID, models.ApplicationStatusPending).Count(&internStats.PendingApplications)
		s.db.Model(&models.Application{}).Where("applicant_id = ? AND status = ?", userID, models.ApplicationStatusAccepted).Count(&internStats.AcceptedApplications)
		s.db.Model(&models.Application{}).Where("applicant_id = ? AND status = ?", userID, models.ApplicationStatusDenied).Count(&internStats.DeniedApplications)
		s.db.Model(&models.Internship{}).Where("intern_id = ? AND status = ?", userID, models.InternshipStatusInProgress).Count(&internStats.ActiveInternships)

		stats["intern_stats"] = internStats

	case models.UserTypeCompany:
		var companyStats struct {
			TotalOffers          int64 `json:"total_offers"`
			TotalApplications    int64 `json:"total_applications"`
			PendingApplications  int64 `json:"pending_applications"`
			AcceptedApplications int64 `json:"accepted_applications"`
		}

		s.db.Model(&models.Offer{}).Where("company_id = ?", userID).Count(&companyStats.TotalOffers)
		s.db.Model(&models.Application{}).
			Where("offer_id IN (SELECT id FROM offers WHERE company_id = ?)", userID).
			Count(&companyStats.TotalApplications)
		s.db.Model(&models.Application{}).
			Where("offer_id IN (SELECT id FROM offers WHERE company_id = ?) AND status = ?", userID, models.ApplicationStatusPending).
			Count(&companyStats.PendingApplications)
		s.db.Model(&models.Application{}).
			Where("offer_id IN (SELECT id FROM offers WHERE company_id = ?) AND status = ?", userID, models.ApplicationStatusAccepted).
			Count(&companyStats.AcceptedApplications)

		stats["company_stats"] = companyStats

	case models.UserTypeInstitution:
		var institutionStats struct {
			TrackedInternships  int64 `json:"tracked_internships"`
			AwaitingReview      int64 `json:"awaiting_review"`
			ActiveInternships   int64 `json:"active_internships"`
			FinishedInternships int64 `json:"finished_internships"`
		}

		s.db.Model(&models.Internship{}).Where("institution_id = ?", userID).Count(&institutionStats.TrackedInternships)
		s.db.Model(&models.Internship{}).Where("institution_id = ? AND step IN (1, 3)", userID).Count(&institutionStats.AwaitingReview)
		s.db.Model(&models.Internship{}).Where("institution_id = ? AND status = ?", userID, models.InternshipStatusInProgress).Count(&institutionStats.ActiveInternships)
		s.db.Model(&models.Internship{}).Where("institution_id = ? AND status = ?", userID, models.InternshipStatusFinished).Count(&institutionStats.FinishedInternships)

		stats["institution_stats"] = institutionStats
	}

	return stats, nil
}
