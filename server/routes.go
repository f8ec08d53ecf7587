package server

import "net/http"

func (s *Server) initRoutes() {
	// Signup and MFA enrollment
	s.RegisterRouteHandler("POST "+RouteSignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteVerifyMFASetup, ChainMiddleware(s.VerifyMFASetupHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteResendQR, ChainMiddleware(s.ResendQRHandler(), s.APIMiddleware()...))

	// Login flow
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteVerifyMFALogin, ChainMiddleware(s.VerifyMFALoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteValidateMFA, ChainMiddleware(s.ValidateMFAHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSkipMFALogin, ChainMiddleware(s.SkipMFALoginHandler(), s.APIMiddleware()...))

	// Notes require a valid access token
	s.RegisterRouteHandler("POST "+RouteNotes, s.protected(s.CreateNoteHandler()))
	s.RegisterRouteHandler("GET "+RouteNotes, s.protected(s.ListNotesHandler()))
	s.RegisterRouteHandler("PUT "+RouteNotesByID, s.protected(s.UpdateNoteHandler()))
	s.RegisterRouteHandler("DELETE "+RouteNotesByID, s.protected(s.DeleteNoteHandler()))
}

func (s *Server) protected(handler http.HandlerFunc) http.HandlerFunc {
	mw := append(s.APIMiddleware(), s.RequireAuth())
	return ChainMiddleware(handler, mw...)
}
