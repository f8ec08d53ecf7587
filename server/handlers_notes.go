package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/securenotes/auth-service/notes"
)

type noteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// CreateNoteHandler stores a note for the authenticated user.
func (s *Server) CreateNoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req noteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Title is required"})
			return
		}

		note := &notes.Note{
			OwnerID: UserID(r.Context()),
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		}
		if err := s.notes.Create(r.Context(), note); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, note)
	}
}

// ListNotesHandler returns all notes owned by the authenticated user.
func (s *Server) ListNotesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owned, err := s.notes.ListByOwner(r.Context(), UserID(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		if owned == nil {
			owned = []*notes.Note{}
		}

		writeJSON(w, http.StatusOK, owned)
	}
}

// UpdateNoteHandler replaces the mutable fields of one of the
// authenticated user's notes.
func (s *Server) UpdateNoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req noteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
			return
		}

		updated, err := s.notes.Update(r.Context(), UserID(r.Context()), r.PathValue("id"), notes.Update{
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteNoteHandler removes one of the authenticated user's notes.
func (s *Server) DeleteNoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.notes.Delete(r.Context(), UserID(r.Context()), r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "Note deleted"})
	}
}
