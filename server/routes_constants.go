package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Signup & Enrollment
	RouteSignup         = "/api/signup"
	RouteVerifyMFASetup = "/api/verify-mfa-setup"
	RouteResendQR       = "/api/resend-qr/{username}"

	// Auth Routes - Login
	RouteLogin          = "/api/login"
	RouteVerifyMFALogin = "/api/verify-mfa-login"
	RouteValidateMFA    = "/api/validate-mfa"
	RouteSkipMFALogin   = "/api/skip-mfa-login"

	// Protected Routes - Notes
	RouteNotes     = "/api/notes"
	RouteNotesByID = "/api/notes/{id}"
)

// HeaderMFAToken carries the MFA-satisfied token on the validate probe.
const HeaderMFAToken = "X-Mfa-Token"
