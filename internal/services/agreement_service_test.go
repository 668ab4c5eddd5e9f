package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/workflow"
)

type AgreementServiceTestSuite struct {
	suite.Suite
	db            *gorm.DB
	store         *StorageService
	agreements    *AgreementService
	applications  *ApplicationService
	notifications *NotificationService

	company     *models.User
	institution *models.User
	intern      *models.User
	offer       *models.Offer
	application *models.Application
	internship  *models.Internship
}

func (s *AgreementServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())

	cfg := newTestConfig()
	store, err := NewStorageService(cfg)
	require.NoError(s.T(), err)

	s.store = store
	s.notifications = NewNotificationService(s.db, cfg)
	s.applications = NewApplicationService(s.db, s.notifications)
	s.agreements = NewAgreementService(s.db, store, s.notifications)

	s.company = createTestUser(s.T(), s.db, "acme", models.UserTypeCompany)
	s.institution = createTestUser(s.T(), s.db, "polytech", models.UserTypeInstitution)
	s.intern = createTestIntern(s.T(), s.db, "hugo", s.institution.ID)
	s.offer = createTestOffer(s.T(), s.db, s.company.ID, "Backend internship")

	s.application, err = s.applications.Apply(s.intern.ID, &ApplyRequest{
		OfferID: s.offer.ID,
		Message: "Motivated candidate",
	})
	require.NoError(s.T(), err)

	s.internship, err = s.applications.Accept(s.application.ID, s.company.ID)
	require.NoError(s.T(), err)
}

func (s *AgreementServiceTestSuite) reload() *models.Internship {
	var internship models.Internship
	require.NoError(s.T(), s.db.First(&internship, s.internship.ID).Error)
	return &internship
}

// outboxCountFor counts queued agreement pushes targeted at a user. The
// application flow also queues pushes, so the filter on title matters.
func (s *AgreementServiceTestSuite) outboxCountFor(userID uuid.UUID) int64 {
	var count int64
	require.NoError(s.T(), s.db.Model(&models.PushOutbox{}).
		Where("target_user_id = ? AND title = ?", userID, "Internship agreement").
		Count(&count).Error)
	return count
}

func (s *AgreementServiceTestSuite) upload(actorID uuid.UUID, fileName string, content []byte) {
	_, err := s.agreements.UploadAgreement(context.Background(), s.internship.ID, actorID, fileName, content)
	require.NoError(s.T(), err)
}

func (s *AgreementServiceTestSuite) TestFullApprovalSequence() {
	ctx := context.Background()
	draft := []byte("%PDF-1.4 draft agreement")

	// Step 0: the intern uploads, which by itself moves nothing.
	s.upload(s.intern.ID, "convention.pdf", draft)
	current := s.reload()
	assert.Equal(s.T(), 0, current.Step)
	assert.Equal(s.T(), "convention.pdf", current.AgreementName)

	_, err := s.agreements.Submit(s.internship.ID, s.intern.ID)
	require.NoError(s.T(), err)
	current = s.reload()
	assert.Equal(s.T(), 1, current.Step)
	assert.Equal(s.T(), int64(1), current.Version)
	assert.Equal(s.T(), int64(1), s.outboxCountFor(s.institution.ID))

	_, err = s.agreements.Accept(s.internship.ID, s.institution.ID)
	require.NoError(s.T(), err)
	current = s.reload()
	assert.Equal(s.T(), 2, current.Step)
	assert.Equal(s.T(), int64(2), current.Version)
	assert.Equal(s.T(), int64(1), s.outboxCountFor(s.intern.ID))

	// The intern replaces the draft with the signed version.
	s.upload(s.intern.ID, "convention_signee.pdf", []byte("%PDF-1.4 signed"))
	_, err = s.agreements.Submit(s.internship.ID, s.intern.ID)
	require.NoError(s.T(), err)
	current = s.reload()
	assert.Equal(s.T(), 3, current.Step)
	assert.Equal(s.T(), int64(2), s.outboxCountFor(s.institution.ID))

	s.upload(s.institution.ID, "convention_finale.pdf", []byte("%PDF-1.4 countersigned"))
	_, err = s.agreements.Finalize(s.internship.ID, s.institution.ID)
	require.NoError(s.T(), err)
	current = s.reload()
	assert.Equal(s.T(), 4, current.Step)
	assert.Equal(s.T(), int64(4), current.Version)
	assert.Equal(s.T(), models.InternshipStatusInProgress, current.Status)
	assert.Equal(s.T(), int64(2), s.outboxCountFor(s.intern.ID))

	// The application served its purpose and is gone.
	var application models.Application
	err = s.db.First(&application, s.application.ID).Error
	assert.ErrorIs(s.T(), err, gorm.ErrRecordNotFound)

	// The final document is still retrievable, byte for byte.
	fetched, err := s.agreements.FetchAgreement(ctx, s.internship.ID, s.intern.ID, "convention_finale.pdf")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []byte("%PDF-1.4 countersigned"), fetched)

	// A finalized sequence accepts no further moves or uploads.
	_, err = s.agreements.Submit(s.internship.ID, s.intern.ID)
	assert.ErrorIs(s.T(), err, workflow.ErrActorNotAllowed)

	_, err = s.agreements.UploadAgreement(ctx, s.internship.ID, s.intern.ID, "late.pdf", draft)
	assert.Error(s.T(), err)
}

func (s *AgreementServiceTestSuite) TestUploadFetchRoundtrip() {
	ctx := context.Background()
	content := []byte("%PDF-1.4 exact bytes \x00\x01\x02")

	s.upload(s.intern.ID, "convention.pdf", content)

	fetched, err := s.agreements.FetchAgreement(ctx, s.internship.ID, s.institution.ID, "convention.pdf")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), content, fetched)

	_, err = s.agreements.FetchAgreement(ctx, s.internship.ID, s.intern.ID, "missing.pdf")
	assert.EqualError(s.T(), err, "agreement document not found")
}

func (s *AgreementServiceTestSuite) TestUploadRejectsBadDocuments() {
	ctx := context.Background()

	_, err := s.agreements.UploadAgreement(ctx, s.internship.ID, s.intern.ID, "convention.docx", []byte("word"))
	assert.Error(s.T(), err)

	_, err = s.agreements.UploadAgreement(ctx, s.internship.ID, s.company.ID, "convention.pdf", []byte("pdf"))
	assert.EqualError(s.T(), err, "unauthorized to act on this internship")
}

func (s *AgreementServiceTestSuite) TestSetAgreementNameIdempotent() {
	s.upload(s.intern.ID, "convention.pdf", []byte("%PDF-1.4"))
	first := s.reload()

	require.NoError(s.T(), s.agreements.SetAgreementName(s.internship.ID, "convention.pdf"))
	second := s.reload()

	assert.Equal(s.T(), "convention.pdf", second.AgreementName)
	assert.Equal(s.T(), first.UpdatedAt, second.UpdatedAt)
}

func (s *AgreementServiceTestSuite) TestRefuseResetsToUpload() {
	s.upload(s.intern.ID, "convention.pdf", []byte("%PDF-1.4 v1"))
	_, err := s.agreements.Submit(s.internship.ID, s.intern.ID)
	require.NoError(s.T(), err)

	_, err = s.agreements.Refuse(s.internship.ID, s.institution.ID)
	require.NoError(s.T(), err)

	current := s.reload()
	assert.Equal(s.T(), 0, current.Step)
	assert.Equal(s.T(), models.InternshipStatusNotStarted, current.Status)
	assert.Equal(s.T(), int64(2), current.Version)
	assert.Equal(s.T(), int64(1), s.outboxCountFor(s.intern.ID))

	// The intern corrects and resubmits; the loop is open, not dead-ended.
	s.upload(s.intern.ID, "convention_v2.pdf", []byte("%PDF-1.4 v2"))
	_, err = s.agreements.Submit(s.internship.ID, s.intern.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, s.reload().Step)
}

func (s *AgreementServiceTestSuite) TestOutOfOrderMovesRejected() {
	s.upload(s.intern.ID, "convention.pdf", []byte("%PDF-1.4"))

	tests := []struct {
		name    string
		actorID uuid.UUID
		call    func(uuid.UUID) (*models.Internship, error)
		wantErr error
	}{
		{
			name:    "institution cannot accept before submission",
			actorID: s.institution.ID,
			call:    func(id uuid.UUID) (*models.Internship, error) { return s.agreements.Accept(s.internship.ID, id) },
			wantErr: workflow.ErrActorNotAllowed,
		},
		{
			name:    "institution cannot refuse before submission",
			actorID: s.institution.ID,
			call:    func(id uuid.UUID) (*models.Internship, error) { return s.agreements.Refuse(s.internship.ID, id) },
			wantErr: workflow.ErrActorNotAllowed,
		},
		{
			name:    "institution cannot finalize before submission",
			actorID: s.institution.ID,
			call:    func(id uuid.UUID) (*models.Internship, error) { return s.agreements.Finalize(s.internship.ID, id) },
			wantErr: workflow.ErrActorNotAllowed,
		},
		{
			name:    "intern cannot accept their own document",
			actorID: s.intern.ID,
			call:    func(id uuid.UUID) (*models.Internship, error) { return s.agreements.Accept(s.internship.ID, id) },
			wantErr: workflow.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := tt.call(tt.actorID)
			assert.ErrorIs(s.T(), err, tt.wantErr)
			assert.Equal(s.T(), 0, s.reload().Step)
		})
	}

	// After submission the wrong moves at step 1 are rejected too.
	_, err := s.agreements.Submit(s.internship.ID, s.intern.ID)
	require.NoError(s.T(), err)

	_, err = s.agreements.Submit(s.internship.ID, s.intern.ID)
	assert.ErrorIs(s.T(), err, workflow.ErrActorNotAllowed)

	_, err = s.agreements.Finalize(s.internship.ID, s.institution.ID)
	assert.ErrorIs(s.T(), err, workflow.ErrInvalidTransition)

	assert.Equal(s.T(), 1, s.reload().Step)
}

func (s *AgreementServiceTestSuite) TestOutsiderCannotAct() {
	stranger := createTestUser(s.T(), s.db, "stranger", models.UserTypeIntern)

	_, err := s.agreements.Submit(s.internship.ID, stranger.ID)
	assert.EqualError(s.T(), err, "unauthorized to act on this internship")

	// The company follows the internship but takes no part in the sequence.
	_, err = s.agreements.Accept(s.internship.ID, s.company.ID)
	assert.EqualError(s.T(), err, "unauthorized to act on this internship")
}

func (s *AgreementServiceTestSuite) TestSubmitWithoutDocumentRejected() {
	_, err := s.agreements.Submit(s.internship.ID, s.intern.ID)
	assert.EqualError(s.T(), err, "no agreement document has been uploaded")
	assert.Equal(s.T(), 0, s.reload().Step)
}

func (s *AgreementServiceTestSuite) TestStaleWriterGetsConflict() {
	s.upload(s.intern.ID, "convention.pdf", []byte("%PDF-1.4"))

	// Two actors load the same snapshot; the first to commit wins.
	stale, role, err := s.agreements.loadForActor(s.internship.ID, s.intern.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), workflow.RoleIntern, role)

	_, err = s.agreements.Submit(s.internship.ID, s.intern.ID)
	require.NoError(s.T(), err)

	err = s.agreements.applyTransition(stale, workflow.RoleIntern, workflow.ActionSubmit, workflow.StepAwaitingReview)
	assert.ErrorIs(s.T(), err, ErrVersionConflict)

	// The winner's state is untouched by the losing attempt.
	current := s.reload()
	assert.Equal(s.T(), 1, current.Step)
	assert.Equal(s.T(), int64(1), current.Version)
}

func (s *AgreementServiceTestSuite) TestEachTransitionNotifiesCounterpartOnce() {
	s.upload(s.intern.ID, "convention.pdf", []byte("%PDF-1.4"))

	_, err := s.agreements.Submit(s.internship.ID, s.intern.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), s.outboxCountFor(s.institution.ID))
	assert.Equal(s.T(), int64(0), s.outboxCountFor(s.intern.ID))

	_, err = s.agreements.Refuse(s.internship.ID, s.institution.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), s.outboxCountFor(s.institution.ID))
	assert.Equal(s.T(), int64(1), s.outboxCountFor(s.intern.ID))

	var notification models.Notification
	require.NoError(s.T(), s.db.Where("user_id = ? AND type = ?", s.intern.ID, "agreement_refuse").
		First(&notification).Error)
	assert.Equal(s.T(), msgAgreementRefused, notification.Body)
}

func (s *AgreementServiceTestSuite) TestGetInternshipVisibility() {
	for _, id := range []uuid.UUID{s.intern.ID, s.institution.ID, s.company.ID} {
		got, err := s.agreements.GetInternship(s.internship.ID, id)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), s.internship.ID, got.ID)
	}

	stranger := createTestUser(s.T(), s.db, "outsider", models.UserTypeCompany)
	_, err := s.agreements.GetInternship(s.internship.ID, stranger.ID)
	assert.EqualError(s.T(), err, "unauthorized to view internship")
}

func (s *AgreementServiceTestSuite) TestListInternshipsFilteredByRole() {
	otherInstitution := createTestUser(s.T(), s.db, "sorbonne", models.UserTypeInstitution)

	params := utils.PaginationParams{Page: 1, Limit: 10}

	list, total, err := s.agreements.ListInternships(s.intern.ID, params)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), total)
	assert.Len(s.T(), list, 1)

	_, total, err = s.agreements.ListInternships(s.company.ID, params)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), total)

	_, total, err = s.agreements.ListInternships(otherInstitution.ID, params)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), total)
}

func TestAgreementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AgreementServiceTestSuite))
}
