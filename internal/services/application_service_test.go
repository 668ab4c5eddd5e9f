package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/HugoSiliveri/StageConnect-sub000/internal/models"
	"github.com/HugoSiliveri/StageConnect-sub000/internal/utils"
)

type ApplicationServiceTestSuite struct {
	suite.Suite
	db           *gorm.DB
	applications *ApplicationService

	company     *models.User
	institution *models.User
	intern      *models.User
	offer       *models.Offer
}

func (s *ApplicationServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())

	cfg := newTestConfig()
	s.applications = NewApplicationService(s.db, NewNotificationService(s.db, cfg))

	s.company = createTestUser(s.T(), s.db, "acme", models.UserTypeCompany)
	s.institution = createTestUser(s.T(), s.db, "polytech", models.UserTypeInstitution)
	s.intern = createTestIntern(s.T(), s.db, "hugo", s.institution.ID)
	s.offer = createTestOffer(s.T(), s.db, s.company.ID, "Backend internship")
}

func (s *ApplicationServiceTestSuite) apply() *models.Application {
	application, err := s.applications.Apply(s.intern.ID, &ApplyRequest{
		OfferID: s.offer.ID,
		Message: "Motivated candidate",
		CVName:  "cv_hugo.pdf",
	})
	require.NoError(s.T(), err)
	return application
}

func (s *ApplicationServiceTestSuite) TestApply() {
	application := s.apply()

	assert.Equal(s.T(), models.ApplicationStatusPending, application.Status)
	assert.Equal(s.T(), "cv_hugo.pdf", application.CVName)
	assert.Nil(s.T(), application.DecidedAt)

	// The company is told about the new candidate.
	var count int64
	s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", s.company.ID, "application_received").
		Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

func (s *ApplicationServiceTestSuite) TestApplyRejectsDuplicates() {
	s.apply()

	_, err := s.applications.Apply(s.intern.ID, &ApplyRequest{OfferID: s.offer.ID})
	assert.EqualError(s.T(), err, "you already have a pending application for this offer")
}

func (s *ApplicationServiceTestSuite) TestApplyAfterDenialAllowed() {
	application := s.apply()

	_, err := s.applications.Deny(application.ID, s.company.ID)
	require.NoError(s.T(), err)

	again, err := s.applications.Apply(s.intern.ID, &ApplyRequest{OfferID: s.offer.ID})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.ApplicationStatusPending, again.Status)
}

func (s *ApplicationServiceTestSuite) TestApplyValidatesActors() {
	_, err := s.applications.Apply(s.company.ID, &ApplyRequest{OfferID: s.offer.ID})
	assert.EqualError(s.T(), err, "only interns can apply to offers")

	require.NoError(s.T(), s.db.Model(s.offer).Update("status", models.OfferStatusClosed).Error)
	_, err = s.applications.Apply(s.intern.ID, &ApplyRequest{OfferID: s.offer.ID})
	assert.EqualError(s.T(), err, "offer is closed")
}

func (s *ApplicationServiceTestSuite) TestAcceptCreatesInternship() {
	application := s.apply()

	internship, err := s.applications.Accept(application.ID, s.company.ID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), s.offer.ID, internship.OfferID)
	assert.Equal(s.T(), s.intern.ID, internship.InternID)
	assert.Equal(s.T(), s.institution.ID, internship.InstitutionID)
	assert.Equal(s.T(), 0, internship.Step)
	assert.Equal(s.T(), models.InternshipStatusNotStarted, internship.Status)

	var updated models.Application
	require.NoError(s.T(), s.db.First(&updated, application.ID).Error)
	assert.Equal(s.T(), models.ApplicationStatusAccepted, updated.Status)
	require.NotNil(s.T(), updated.DecidedBy)
	assert.Equal(s.T(), s.company.ID, *updated.DecidedBy)
}

func (s *ApplicationServiceTestSuite) TestAcceptRequiresInstitutionLink() {
	orphan := createTestUser(s.T(), s.db, "orphan", models.UserTypeIntern)
	application, err := s.applications.Apply(orphan.ID, &ApplyRequest{OfferID: s.offer.ID})
	require.NoError(s.T(), err)

	_, err = s.applications.Accept(application.ID, s.company.ID)
	assert.EqualError(s.T(), err, "applicant has no institution linked to their account")
}

func (s *ApplicationServiceTestSuite) TestDecisionsRestrictedToOfferOwner() {
	application := s.apply()
	rival := createTestUser(s.T(), s.db, "rival", models.UserTypeCompany)

	_, err := s.applications.Accept(application.ID, rival.ID)
	assert.EqualError(s.T(), err, "unauthorized to decide on this application")

	_, err = s.applications.Deny(application.ID, rival.ID)
	assert.EqualError(s.T(), err, "unauthorized to decide on this application")
}

func (s *ApplicationServiceTestSuite) TestDecisionsAreTerminal() {
	application := s.apply()

	denied, err := s.applications.Deny(application.ID, s.company.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.ApplicationStatusDenied, denied.Status)

	_, err = s.applications.Accept(application.ID, s.company.ID)
	assert.EqualError(s.T(), err, "application already processed")
}

func (s *ApplicationServiceTestSuite) TestSearchScopedToOwnSide() {
	s.apply()
	params := ApplicationSearchParams{PaginationParams: utils.PaginationParams{Page: 1, Limit: 10}}

	// Both sides of the application see it.
	_, total, err := s.applications.SearchApplications(params, s.intern.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), total)

	_, total, err = s.applications.SearchApplications(params, s.company.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), total)

	// A third party sees nothing.
	stranger := createTestUser(s.T(), s.db, "stranger", models.UserTypeCompany)
	_, total, err = s.applications.SearchApplications(params, stranger.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), total)

	status := models.ApplicationStatusDenied
	params.Status = &status
	_, total, err = s.applications.SearchApplications(params, s.intern.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), total)
}

func (s *ApplicationServiceTestSuite) TestStatisticsPerRole() {
	application := s.apply()
	_, err := s.applications.Accept(application.ID, s.company.ID)
	require.NoError(s.T(), err)

	stats, err := s.applications.GetStatistics(s.intern.ID)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), stats, "intern_stats")

	stats, err = s.applications.GetStatistics(s.company.ID)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), stats, "company_stats")

	stats, err = s.applications.GetStatistics(s.institution.ID)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), stats, "institution_stats")
}

func TestApplicationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceTestSuite))
}
