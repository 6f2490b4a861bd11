package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/portstack/beacon/internal/model"
	"github.com/portstack/beacon/internal/store"
)

// noteContent pulls and validates the note body shared by create and
// update.
func noteContent(r *http.Request) (string, string) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", "Invalid JSON body"
	}
	content := strings.TrimSpace(body.Content)
	if content == "" {
		return "", "Note content is required"
	}
	if len(content) > model.MaxNoteLength {
		return "", fmt.Sprintf("Note content must be %d characters or fewer", model.MaxNoteLength)
	}
	return content, ""
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}
	if _, err := s.store.GetCompany(r.Context(), id); err != nil {
		s.companyError(w, err)
		return
	}

	notes, err := s.store.ListNotes(r.Context(), id)
	if err != nil {
		s.serverError(w, "list notes", err)
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}
	content, msg := noteContent(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	note, err := s.store.CreateNote(r.Context(), id, content)
	if err != nil {
		s.companyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	companyID, ok1 := parseID(r, "id")
	noteID, ok2 := parseID(r, "noteId")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "Invalid IDs")
		return
	}
	content, msg := noteContent(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	note, err := s.store.UpdateNote(r.Context(), companyID, noteID, content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Note not found")
			return
		}
		s.serverError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	companyID, ok1 := parseID(r, "id")
	noteID, ok2 := parseID(r, "noteId")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "Invalid IDs")
		return
	}
	if err := s.store.DeleteNote(r.Context(), companyID, noteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Note not found")
			return
		}
		s.serverError(w, "delete note", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": noteID})
}
