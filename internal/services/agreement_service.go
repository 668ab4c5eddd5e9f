package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/database"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/workflow"
)

// ErrVersionConflict is returned when a transition lost the race against a
// concurrent writer. The caller should reload the internship and retry.
var ErrVersionConflict = errors.New("internship was modified concurrently, reload and retry")

// Notification copy per transition, keyed by the action that produced it.
// Fixed strings rather than request-locale lookups: pushes are rendered when
// the outbox drains, long after the originating request and its locale are
// gone.
const (
	msgAgreementSubmitted = "An internship agreement is awaiting your review."
	msgAgreementSigned    = "The signed internship agreement is awaiting finalization."
	msgAgreementAccepted  = "Your internship agreement was accepted. Please upload the signed version."
	msgAgreementRefused   = "Your internship agreement was refused. Please upload a corrected version."
	msgAgreementFinalized = "Your internship agreement is finalized. The internship can begin."
)

type AgreementService struct {
	db            *gorm.DB
	store         ObjectStore
	notifications *NotificationService
}

func NewAgreementService(db *gorm.DB, store ObjectStore, notifications *NotificationService) *AgreementService {
	return &AgreementService{
		db:            db,
		store:         store,
		notifications: notifications,
	}
}

// UploadAgreement stores an agreement document for the internship and records
// its name. Uploading never moves the step counter; the uploader advances the
// sequence with an explicit Submit or Finalize afterwards. Re-uploading under
// the same name overwrites the stored object.
func (s *AgreementService) UploadAgreement(ctx context.Context, internshipID, actorID uuid.UUID, fileName string, content []byte) (*models.Internship, error) {
	internship, _, err := s.loadForActor(internshipID, actorID)
	if err != nil {
		return nil, err
	}

	if workflow.Terminal(workflow.Step(internship.Step)) {
		return nil, errors.New("agreement process is already finalized")
	}

	if err := ValidateDocument(fileName, int64(len(content))); err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, ObjectKey(internship.InternID, fileName), content, "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to store agreement: %w", err)
	}

	if err := s.SetAgreementName(internshipID, fileName); err != nil {
		return nil, err
	}

	internship.AgreementName = fileName
	return internship, nil
}

// SetAgreementName records the display name of the current agreement
// document. Idempotent: setting the name it already carries is a no-op.
func (s *AgreementService) SetAgreementName(internshipID uuid.UUID, fileName string) error {
	result := s.db.Model(&models.Internship{}).
		Where("id = ? AND agreement_name <> ?", internshipID, fileName).
		Update("agreement_name", fileName)
	if result.Error != nil {
		return fmt.Errorf("failed to record agreement name: %w", result.Error)
	}
	return nil
}

// FetchAgreement returns the stored agreement document bytes, unmodified.
func (s *AgreementService) FetchAgreement(ctx context.Context, internshipID, actorID uuid.UUID, fileName string) ([]byte, error) {
	internship, _, err := s.loadForActor(internshipID, actorID)
	if err != nil {
		return nil, err
	}

	content, err := s.store.Get(ctx, ObjectKey(internship.InternID, fileName))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, errors.New("agreement document not found")
		}
		return nil, fmt.Errorf("failed to fetch agreement: %w", err)
	}

	return content, nil
}

// Submit hands the current document over for the institution's review, or,
// at the signature step, hands the signed document over for finalization.
func (s *AgreementService) Submit(internshipID, actorID uuid.UUID) (*models.Internship, error) {
	return s.advance(internshipID, actorID, workflow.ActionSubmit)
}

// Accept validates the submitted agreement and asks the intern to sign it.
func (s *AgreementService) Accept(internshipID, actorID uuid.UUID) (*models.Internship, error) {
	return s.advance(internshipID, actorID, workflow.ActionAccept)
}

// Refuse sends the agreement back to the intern for correction.
func (s *AgreementService) Refuse(internshipID, actorID uuid.UUID) (*models.Internship, error) {
	return s.advance(internshipID, actorID, workflow.ActionRefuse)
}

// Finalize closes the approval sequence. The internship becomes active and
// the originating application is removed, its job done.
func (s *AgreementService) Finalize(internshipID, actorID uuid.UUID) (*models.Internship, error) {
	return s.advance(internshipID, actorID, workflow.ActionFinalize)
}

// advance runs one workflow transition. The step and version are compared
// and swapped in a single UPDATE so two concurrent actors cannot both win:
// the loser's UPDATE matches zero rows and surfaces ErrVersionConflict.
func (s *AgreementService) advance(internshipID, actorID uuid.UUID, action workflow.Action) (*models.Internship, error) {
	internship, role, err := s.loadForActor(internshipID, actorID)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Transition(workflow.Step(internship.Step), action, role)
	if err != nil {
		return nil, err
	}

	if internship.AgreementName == "" && (action == workflow.ActionSubmit || action == workflow.ActionFinalize) {
		return nil, errors.New("no agreement document has been uploaded")
	}

	if err := s.applyTransition(internship, role, action, next); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"internship_id": internship.ID,
		"action":        action,
		"from_step":     internship.Step,
		"to_step":       int(next),
	}).Info("Agreement transition applied")

	internship.Step = int(next)
	internship.Version++
	if workflow.Terminal(next) {
		internship.Status = models.InternshipStatusInProgress
	}
	return internship, nil
}

// applyTransition persists one transition from the loaded snapshot to next.
// Step and version are compared against the snapshot in the UPDATE itself, so
// a writer working from stale state matches zero rows and gets
// ErrVersionConflict instead of clobbering the winner.
func (s *AgreementService) applyTransition(internship *models.Internship, role workflow.Role, action workflow.Action, next workflow.Step) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"step":    int(next),
			"version": gorm.Expr("version + 1"),
		}
		if workflow.Terminal(next) {
			updates["status"] = models.InternshipStatusInProgress
		}

		result := tx.Model(&models.Internship{}).
			Where("id = ? AND step = ? AND version = ?", internship.ID, internship.Step, internship.Version).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update internship: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}

		if workflow.Terminal(next) {
			if err := tx.Where("offer_id = ? AND applicant_id = ?", internship.OfferID, internship.InternID).
				Delete(&models.Application{}).Error; err != nil {
				return fmt.Errorf("failed to remove application: %w", err)
			}
		}

		target, body := s.counterpart(internship, role, action)
		return s.notifications.Notify(tx, target, "agreement_"+string(action),
			"Internship agreement", body, "internship", &internship.ID)
	})
}

// counterpart picks the party to notify about a transition (always the other
// side of the intern/institution pair) and the message they receive.
func (s *AgreementService) counterpart(internship *models.Internship, actor workflow.Role, action workflow.Action) (uuid.UUID, string) {
	if actor == workflow.RoleIntern {
		body := msgAgreementSubmitted
		if workflow.Step(internship.Step) == workflow.StepAwaitingSignature {
			body = msgAgreementSigned
		}
		return internship.InstitutionID, body
	}

	var body string
	switch action {
	case workflow.ActionAccept:
		body = msgAgreementAccepted
	case workflow.ActionRefuse:
		body = msgAgreementRefused
	case workflow.ActionFinalize:
		body = msgAgreementFinalized
	}
	return internship.InternID, body
}

// loadForActor fetches the internship and resolves which workflow role the
// acting user holds on it. Users outside the intern/institution pair (the
// company included) get an unauthorized error before any transition check.
func (s *AgreementService) loadForActor(internshipID, actorID uuid.UUID) (*models.Internship, workflow.Role, error) {
	var internship models.Internship
	if err := s.db.First(&internship, internshipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errors.New("internship not found")
		}
		return nil, "", fmt.Errorf("database error: %w", err)
	}

	switch actorID {
	case internship.InternID:
		return &internship, workflow.RoleIntern, nil
	case internship.InstitutionID:
		return &internship, workflow.RoleInstitution, nil
	default:
		return nil, "", errors.New("unauthorized to act on this internship")
	}
}

func (s *AgreementService) GetInternship(id, userID uuid.UUID) (*models.Internship, error) {
	var internship models.Internship
	if err := s.db.Preload("Offer").Preload("Offer.Company").Preload("Intern").Preload("Institution").
		First(&internship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("internship not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var offer models.Offer
	if err := s.db.First(&offer, internship.OfferID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if userID != internship.InternID && userID != internship.InstitutionID && userID != offer.CompanyID {
		return nil, errors.New("unauthorized to view internship")
	}

	return &internship, nil
}

// ListInternships returns the internships visible to the user, filtered by
// their role: interns see their own, institutions the ones they supervise,
// companies the ones born from their offers.
func (s *AgreementService) ListInternships(userID uuid.UUID, params utils.PaginationParams) ([]models.Internship, int64, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, 0, errors.New("user not found")
	}

	query := s.db.Model(&models.Internship{}).
		Preload("Offer").Preload("Intern").Preload("Institution")

	switch user.UserType {
	case models.UserTypeIntern:
		query = query.Where("intern_id = ?", userID)
	case models.UserTypeCompany:
		query = query.Where("offer_id IN (SELECT id FROM offers WHERE company_id = ?)", userID)
	case models.UserTypeInstitution:
		query = query.Where("institution_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count internships: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "step", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var internships []models.Internship
	if err := query.Find(&internships).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch internships: %w", err)
	}

	return internships, total, nil
}
