package models

// AttendanceRecord marks whether a participant attended a session.
// The (SessionID, ParticipantID) pair is unique.
type AttendanceRecord struct {
	ID            int64   `json:"id,omitempty"`
	SessionID     int64   `json:"session_id"`
	ParticipantID int64   `json:"participant_id"`
	Attended      bool    `json:"attended"`
	Notes         *string `json:"notes"`
}

// RosterEntry is one line of a session roster: every participant appears,
// whether or not an attendance row exists for the session.
type RosterEntry struct {
	ParticipantID   int64  `json:"participant_id"`
	ParticipantName string `json:"participant_name"`

	// AttendanceID is nil when no attendance row exists yet.
	AttendanceID *int64  `json:"attendance_id"`
	Attended     bool    `json:"attended"`
	Notes        *string `json:"notes"`
}

// AttendanceSummary is a participant's attendance over all sessions.
type AttendanceSummary struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	AttendedSessions int64   `json:"attended_sessions"`
	TotalSessions    int64   `json:"total_sessions"`
	AttendanceRate   float64 `json:"attendance_rate"`
}

// BatchResult reports what a bulk attendance save did.
type BatchResult struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
}
