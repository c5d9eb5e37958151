package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/studytracker/internal/api"
	"github.com/mmynk/studytracker/internal/calculator"
	"github.com/mmynk/studytracker/internal/models"
	"github.com/mmynk/studytracker/internal/storage"
)

// ParticipantService serves the participant endpoints.
type ParticipantService struct {
	store storage.Store
}

// NewParticipantService creates a new ParticipantService with the given storage backend.
func NewParticipantService(store storage.Store) *ParticipantService {
	return &ParticipantService{store: store}
}

type participantRequest struct {
	Name            string         `json:"name" validate:"required,max=200"`
	ContactInfo     *string        `json:"contact_info"`
	Age             optionalNumber `json:"age"`
	Gender          *string        `json:"gender" validate:"omitempty,oneof=M F"`
	MainAddress     *string        `json:"main_address"`
	Locality        *string        `json:"locality"`
	DateJoined      string         `json:"date_joined" validate:"omitempty,date"`
	ReferredBy      optionalID     `json:"referred_by_participant_id"`
	BaptismInterest looseBool      `json:"baptism_interest"`
}

// parse decodes, normalizes and validates a participant body.
func parseParticipant(r *http.Request) (*models.Participant, error) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.ContactInfo = trimmed(req.ContactInfo)
	req.MainAddress = trimmed(req.MainAddress)
	req.Locality = trimmed(req.Locality)
	req.DateJoined = strings.TrimSpace(req.DateJoined)
	if g := trimmed(req.Gender); g != nil {
		upper := strings.ToUpper(*g)
		req.Gender = &upper
	} else {
		req.Gender = nil
	}

	if req.Name == "" {
		return nil, badRequest("Participant name is required.")
	}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	if req.Age.Value != nil && (*req.Age.Value < 0 || *req.Age.Value > 150) {
		return nil, invalidFields(map[string]string{"age": "range"})
	}

	return &models.Participant{
		Name:                    req.Name,
		ContactInfo:             req.ContactInfo,
		Age:                     req.Age.Value,
		Gender:                  req.Gender,
		MainAddress:             req.MainAddress,
		Locality:                req.Locality,
		DateJoined:              req.DateJoined,
		ReferredByParticipantID: req.ReferredBy.Value,
		BaptismInterest:         req.BaptismInterest.Value,
	}, nil
}

// trimmed trims s and turns blank strings into nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

type changeResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Changes int64  `json:"changes"`
}

// List returns all participants ordered by name.
func (s *ParticipantService) List(w http.ResponseWriter, r *http.Request) {
	participants, err := s.store.ListParticipants(r.Context())
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching participants."))
		return
	}
	api.WriteJSON(w, http.StatusOK, participants)
}

// Get returns one participant.
func (s *ParticipantService) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.store.GetParticipant(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, notFound("Participant not found."))
		return
	}
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching participant."))
		return
	}
	api.WriteJSON(w, http.StatusOK, p)
}

// Create adds a participant and returns it.
func (s *ParticipantService) Create(w http.ResponseWriter, r *http.Request) {
	p, err := parseParticipant(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.store.CreateParticipant(r.Context(), p); err != nil {
		slog.Warn("CreateParticipant failed", "name", p.Name, "error", err)
		writeError(w, r, withMessage(err, "Error adding participant."))
		return
	}

	created, err := s.store.GetParticipant(r.Context(), p.ID)
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching participant."))
		return
	}

	slog.Info("Participant created", "participant_id", created.ID)
	api.WriteJSON(w, http.StatusCreated, created)
}

// Update replaces the mutable fields of a participant.
func (s *ParticipantService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := parseParticipant(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p.ReferredByParticipantID != nil && *p.ReferredByParticipantID == id {
		writeError(w, r, badRequest("A participant cannot refer themselves."))
		return
	}
	p.ID = id

	changes, err := s.store.UpdateParticipant(r.Context(), p)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, notFound("Participant not found."))
		return
	}
	if err != nil {
		writeError(w, r, withMessage(err, "Error updating participant."))
		return
	}

	slog.Info("Participant updated", "participant_id", id)
	api.WriteJSON(w, http.StatusOK, changeResponse{Message: "Participant updated successfully", ID: id, Changes: changes})
}

type baptismInterestResponse struct {
	Message         string `json:"message"`
	ID              int64  `json:"id"`
	BaptismInterest bool   `json:"baptism_interest"`
}

// SetBaptismInterest updates only the baptism interest flag. The value must be a JSON boolean.
func (s *ParticipantService) SetBaptismInterest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body map[string]json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	var interested bool
	raw, ok := body["baptism_interest"]
	if !ok || json.Unmarshal(raw, &interested) != nil || string(raw) == "null" {
		writeError(w, r, badRequest("baptism_interest must be boolean"))
		return
	}

	err = s.store.SetBaptismInterest(r.Context(), id, interested)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, notFound("Participant not found."))
		return
	}
	if err != nil {
		writeError(w, r, withMessage(err, "Error updating baptism interest."))
		return
	}

	api.WriteJSON(w, http.StatusOK, baptismInterestResponse{
		Message:         "Baptism interest updated",
		ID:              id,
		BaptismInterest: interested,
	})
}

// Delete removes a participant. Attendance rows cascade and referrals are cleared.
func (s *ParticipantService) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	changes, err := s.store.DeleteParticipant(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, notFound("Participant not found."))
		return
	}
	if err != nil {
		writeError(w, r, withMessage(err, "Error deleting participant."))
		return
	}

	slog.Info("Participant deleted", "participant_id", id)
	api.WriteJSON(w, http.StatusOK, changeResponse{Message: "Participant deleted successfully", ID: id, Changes: changes})
}

// AttendanceSummary returns attended and total session counts with a rate per participant.
func (s *ParticipantService) AttendanceSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.AttendanceSummaries(r.Context())
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching attendance summary."))
		return
	}
	if err := calculator.ApplyRates(summaries); err != nil {
		writeError(w, r, withMessage(err, "Error computing attendance rates."))
		return
	}
	api.WriteJSON(w, http.StatusOK, summaries)
}

// BaptismCandidates lists participants interested in baptism.
func (s *ParticipantService) BaptismCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.store.ListBaptismCandidates(r.Context())
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching baptism candidates."))
		return
	}
	api.WriteJSON(w, http.StatusOK, candidates)
}
