package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/studytracker/internal/api"
	"github.com/mmynk/studytracker/internal/models"
	"github.com/mmynk/studytracker/internal/storage"
)

// AttendanceService serves the roster and bulk save endpoints.
type AttendanceService struct {
	store storage.Store
}

// NewAttendanceService creates a new AttendanceService with the given storage backend.
func NewAttendanceService(store storage.Store) *AttendanceService {
	return &AttendanceService{store: store}
}

type attendanceRecordRequest struct {
	SessionID     *int64    `json:"session_id"`
	ParticipantID *int64    `json:"participant_id"`
	Attended      looseBool `json:"attended"`
	Notes         *string   `json:"notes"`
}

type attendanceBatchRequest struct {
	Attendance []attendanceRecordRequest `json:"attendance"`
}

type attendanceSavedResponse struct {
	Message string `json:"message"`
	models.BatchResult
}

// Roster returns every participant with their mark for the session.
func (s *AttendanceService) Roster(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionId")
	if err != nil {
		writeError(w, r, badRequest("Invalid session ID."))
		return
	}

	if _, err := s.store.GetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, notFound("Session not found."))
			return
		}
		writeError(w, r, withMessage(err, "Error fetching attendance."))
		return
	}

	roster, err := s.store.SessionRoster(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching attendance."))
		return
	}
	api.WriteJSON(w, http.StatusOK, roster)
}

// Save upserts a batch of marks in one transaction. Records missing a session,
// participant or attended value are skipped; any store failure rolls back the batch.
func (s *AttendanceService) Save(w http.ResponseWriter, r *http.Request) {
	var req attendanceBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Attendance) == 0 {
		writeError(w, r, badRequest("Request body must be an array of attendance records under the 'attendance' key."))
		return
	}

	records := make([]models.AttendanceRecord, 0, len(req.Attendance))
	skipped := 0
	for i, rec := range req.Attendance {
		if rec.SessionID == nil || rec.ParticipantID == nil || !rec.Attended.Set {
			slog.Warn("Skipping invalid attendance record", "index", i,
				"session_id", rec.SessionID, "participant_id", rec.ParticipantID)
			skipped++
			continue
		}
		records = append(records, models.AttendanceRecord{
			SessionID:     *rec.SessionID,
			ParticipantID: *rec.ParticipantID,
			Attended:      rec.Attended.Value,
			Notes:         trimmed(rec.Notes),
		})
	}

	if len(records) > 0 {
		if err := s.store.SaveAttendance(r.Context(), records); err != nil {
			slog.Error("Attendance batch rolled back", "records", len(records), "error", err)
			writeError(w, r, withMessage(err, "Error saving one or more attendance records."))
			return
		}
	}

	slog.Info("Attendance saved", "saved", len(records), "skipped", skipped)
	api.WriteJSON(w, http.StatusCreated, attendanceSavedResponse{
		Message:     "Attendance saved successfully.",
		BatchResult: models.BatchResult{Saved: len(records), Skipped: skipped},
	})
}
