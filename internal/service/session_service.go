package service

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/studytracker/internal/api"
	"github.com/mmynk/studytracker/internal/models"
	"github.com/mmynk/studytracker/internal/storage"
)

const msgDuplicateSession = "A session already exists for this date."

// SessionService serves the study session endpoints.
type SessionService struct {
	store storage.Store
}

// NewSessionService creates a new SessionService with the given storage backend.
func NewSessionService(store storage.Store) *SessionService {
	return &SessionService{store: store}
}

type sessionRequest struct {
	SessionDate string  `json:"session_date" validate:"required,date"`
	Topic       *string `json:"topic" validate:"omitempty,max=500"`
}

func parseSession(r *http.Request) (*models.StudySession, error) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	req.SessionDate = strings.TrimSpace(req.SessionDate)
	req.Topic = trimmed(req.Topic)

	if req.SessionDate == "" {
		return nil, badRequest("Session date is required.")
	}
	if !isDate(req.SessionDate) {
		return nil, badRequest("Session date must be a valid date in YYYY-MM-DD format.")
	}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	return &models.StudySession{SessionDate: req.SessionDate, Topic: req.Topic}, nil
}

// List returns all sessions, most recent first.
func (s *SessionService) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching sessions."))
		return
	}
	api.WriteJSON(w, http.StatusOK, sessions)
}

// Get returns one session.
func (s *SessionService) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.store.GetSession(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, notFound("Session not found."))
		return
	}
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching session."))
		return
	}
	api.WriteJSON(w, http.StatusOK, session)
}

type sessionCreatedResponse struct {
	ID          int64   `json:"id"`
	SessionDate string  `json:"session_date"`
	Topic       *string `json:"topic"`
}

// Create adds a session. A second session on the same date is a conflict.
func (s *SessionService) Create(w http.ResponseWriter, r *http.Request) {
	session, err := parseSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = s.store.CreateSession(r.Context(), session)
	if errors.Is(err, storage.ErrConflict) {
		writeError(w, r, withMessage(err, msgDuplicateSession))
		return
	}
	if err != nil {
		writeError(w, r, withMessage(err, "Error creating session."))
		return
	}

	slog.Info("Session created", "session_id", session.ID, "session_date", session.SessionDate)
	api.WriteJSON(w, http.StatusCreated, sessionCreatedResponse{
		ID:          session.ID,
		SessionDate: session.SessionDate,
		Topic:       session.Topic,
	})
}

// Update changes the date and topic of a session.
func (s *SessionService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := parseSession(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	session.ID = id

	err = s.store.UpdateSession(r.Context(), session)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, notFound("Session not found."))
		return
	case errors.Is(err, storage.ErrConflict):
		writeError(w, r, withMessage(err, msgDuplicateSession))
		return
	case err != nil:
		writeError(w, r, withMessage(err, "Error updating session."))
		return
	}

	updated, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching session."))
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
}

// Delete removes a session and its attendance rows.
func (s *SessionService) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	changes, err := s.store.DeleteSession(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, notFound("Session not found."))
		return
	}
	if err != nil {
		writeError(w, r, withMessage(err, "Error deleting session."))
		return
	}

	slog.Info("Session deleted", "session_id", id)
	api.WriteJSON(w, http.StatusOK, changeResponse{Message: "Session deleted successfully", ID: id, Changes: changes})
}
