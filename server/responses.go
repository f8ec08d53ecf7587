package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	autherrors "github.com/securenotes/auth-service/internal/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates the error taxonomy into an HTTP status with a
// generic body. Only unexpected failures are logged with detail; the
// client never sees internals.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case autherrors.Is(err, autherrors.ErrDuplicateUser):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "User already exists"})
	case autherrors.Is(err, autherrors.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid username or password"})
	case autherrors.Is(err, autherrors.ErrInvalidMFACode):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid MFA code"})
	case autherrors.Is(err, autherrors.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid or expired token"})
	case autherrors.Is(err, autherrors.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "User not found"})
	case autherrors.Is(err, autherrors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Not found"})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal server error"})
	}
}
