package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthPasswordReset      = "auth.password_reset"

	// Users
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"
	KeyUserDeviceAdded    = "user.device_registered"

	// Offers
	KeyOfferCreated  = "offer.created"
	KeyOfferDeleted  = "offer.deleted"
	KeyOfferNotFound = "offer.not_found"

	// Applications
	KeyApplicationSubmitted = "application.submitted"
	KeyApplicationAccepted  = "application.accepted"
	KeyApplicationDenied    = "application.denied"
	KeyApplicationNotFound  = "application.not_found"
	KeyApplicationExists    = "application.already_exists"

	// Internships / agreement workflow
	KeyInternshipNotFound         = "internship.not_found"
	KeyAgreementUploaded          = "agreement.uploaded"
	KeyAgreementSubmitted         = "agreement.submitted"
	KeyAgreementAccepted          = "agreement.accepted"
	KeyAgreementRefused           = "agreement.refused"
	KeyAgreementFinalized         = "agreement.finalized"
	KeyAgreementInvalidTransition = "agreement.invalid_transition"
	KeyAgreementNotYourTurn       = "agreement.not_your_turn"
	KeyAgreementConflict          = "agreement.conflict"

	// Chat
	KeyChatNotFound   = "chat.not_found"
	KeyChatCreated    = "chat.created"
	KeyMessageSent    = "chat.message_sent"
	KeyChatNotAMember = "chat.not_a_member"

	// Notifications
	KeyNotificationRead     = "notification.read"
	KeyNotificationNotFound = "notification.not_found"

	// Files
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileNotFound      = "file.not_found"

	// Access control
	KeyAccessDenied = "access.denied"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
