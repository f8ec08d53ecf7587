package server

import (
	"encoding/json"
	"net/http"
	"strings"

	autherrors "github.com/securenotes/auth-service/internal/errors"
	"github.com/securenotes/auth-service/users"
)

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupResponse struct {
	QRCode string `json:"qrCode"`
}

type mfaCodeRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

type verifiedResponse struct {
	Verified bool `json:"verified"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool `json:"success"`
}

type mfaLoginResponse struct {
	Verified bool   `json:"verified"`
	Token    string `json:"token"`
	MFAToken string `json:"mfaToken"`
}

type validateMFAResponse struct {
	Valid bool `json:"valid"`
}

type skipMFARequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	MFAToken string `json:"mfaToken"`
}

type skipMFAResponse struct {
	Verified bool   `json:"verified"`
	Token    string `json:"token"`
}

// SignupHandler registers a new user and returns the TOTP enrollment QR
// code as a data URI. The account is created even if the caller never
// scans the code; enrollment completes on the first verified code.
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Username is required"})
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
			return
		}

		qrCode, err := s.auth.Signup(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, signupResponse{QRCode: qrCode})
	}
}

// VerifyMFASetupHandler confirms the user's authenticator app is
// producing valid codes for the secret issued at signup.
func (s *Server) VerifyMFASetupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mfaCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
			return
		}

		verified, err := s.auth.VerifyMFASetup(r.Context(), req.Username, req.Token)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, verifiedResponse{Verified: verified})
	}
}

// ResendQRHandler regenerates the enrollment QR code from the stored
// secret, for users who closed the signup page before scanning.
func (s *Server) ResendQRHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		if username == "" {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Username is required"})
			return
		}

		qrCode, err := s.auth.RegenerateQR(r.Context(), username)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, signupResponse{QRCode: qrCode})
	}
}

// LoginHandler checks the password step only. A success response tells
// the client to proceed to MFA verification; no token is issued here.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
			return
		}

		if err := s.auth.Login(r.Context(), req.Username, req.Password); err != nil {
			if autherrors.Is(err, autherrors.ErrInvalidCredentials) {
				writeJSON(w, http.StatusUnauthorized, loginResponse{Success: false})
				return
			}
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{Success: true})
	}
}

// VerifyMFALoginHandler completes the second login step. On a valid
// code it returns a session token and a fresh MFA token the client can
// store to skip the code prompt next time.
func (s *Server) VerifyMFALoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mfaCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
			return
		}

		pair, err := s.auth.VerifyMFALogin(r.Context(), req.Username, req.Token)
		if err != nil {
			if autherrors.Is(err, autherrors.ErrInvalidMFACode) {
				writeJSON(w, http.StatusUnauthorized, verifiedResponse{Verified: false})
				return
			}
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, mfaLoginResponse{
			Verified: true,
			Token:    pair.AccessToken,
			MFAToken: pair.MFAToken,
		})
	}
}

// ValidateMFAHandler lets the client probe whether its stored MFA token
// is still usable before offering the skip-MFA path.
func (s *Server) ValidateMFAHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken := r.Header.Get(HeaderMFAToken)
		if err := s.auth.ValidateMFAToken(rawToken); err != nil {
			writeJSON(w, http.StatusUnauthorized, validateMFAResponse{Valid: false})
			return
		}

		writeJSON(w, http.StatusOK, validateMFAResponse{Valid: true})
	}
}

// SkipMFALoginHandler exchanges password plus a previously issued MFA
// token for a new session token. The password is always re-checked; a
// stale or foreign MFA token fails even with correct credentials.
func (s *Server) SkipMFALoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req skipMFARequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
			return
		}

		accessToken, err := s.auth.SkipMFALogin(r.Context(), req.Username, req.Password, req.MFAToken)
		if err != nil {
			if autherrors.Is(err, autherrors.ErrInvalidToken) {
				writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid or expired MFA token"})
				return
			}
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, skipMFAResponse{Verified: true, Token: accessToken})
	}
}
