// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/studytracker/internal/models"
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a user and populates its ID.
	// Returns ErrConflict if the username is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername returns ErrNotFound if no user has that name.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// ListUsers returns all users ordered by username.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// ApproveUser marks a pending user approved.
	// Returns ErrNotFound for an unknown id and ErrAlreadyApproved when nothing changed.
	ApproveUser(ctx context.Context, id int64) error

	// UpdateUser applies the non-nil fields of update.
	// Returns ErrLastAdmin when the change would leave no administrator.
	UpdateUser(ctx context.Context, id int64, update models.UserUpdate) error

	// DeleteUser returns ErrNotFound if the user does not exist.
	DeleteUser(ctx context.Context, id int64) error
}

// ParticipantStore persists participants.
type ParticipantStore interface {
	// ListParticipants returns all participants with their referrer name, ordered by name.
	ListParticipants(ctx context.Context) ([]*models.Participant, error)

	// GetParticipant returns ErrNotFound if the participant does not exist.
	GetParticipant(ctx context.Context, id int64) (*models.Participant, error)

	// CreateParticipant inserts p and populates its ID and DateJoined.
	CreateParticipant(ctx context.Context, p *models.Participant) error

	// UpdateParticipant replaces the mutable fields of p.ID.
	// An empty DateJoined keeps the stored date.
	UpdateParticipant(ctx context.Context, p *models.Participant) (int64, error)

	// SetBaptismInterest updates only the baptism interest flag.
	SetBaptismInterest(ctx context.Context, id int64, interested bool) error

	// DeleteParticipant removes the participant, its attendance rows,
	// and clears referrer links pointing at it.
	DeleteParticipant(ctx context.Context, id int64) (int64, error)

	// ListBaptismCandidates returns participants interested in baptism, ordered by name.
	ListBaptismCandidates(ctx context.Context) ([]*models.BaptismCandidate, error)
}

// SessionStore persists study sessions.
type SessionStore interface {
	// ListSessions returns all sessions, most recent date first.
	ListSessions(ctx context.Context) ([]*models.StudySession, error)

	// GetSession returns ErrNotFound if the session does not exist.
	GetSession(ctx context.Context, id int64) (*models.StudySession, error)

	// CreateSession inserts s and populates its ID.
	// Returns ErrConflict if a session already exists for the date.
	CreateSession(ctx context.Context, s *models.StudySession) error

	// UpdateSession replaces date and topic of s.ID.
	UpdateSession(ctx context.Context, s *models.StudySession) error

	// DeleteSession removes the session and its attendance rows.
	DeleteSession(ctx context.Context, id int64) (int64, error)
}

// AttendanceStore persists attendance marks.
type AttendanceStore interface {
	// SessionRoster returns every participant joined to its attendance row for the session.
	SessionRoster(ctx context.Context, sessionID int64) ([]*models.RosterEntry, error)

	// SaveAttendance upserts all records in one transaction. Either every record
	// is persisted or none is.
	SaveAttendance(ctx context.Context, records []models.AttendanceRecord) error

	// AttendanceSummaries returns attended and total session counts per participant.
	AttendanceSummaries(ctx context.Context) ([]*models.AttendanceSummary, error)
}

// DashboardStore computes dashboard aggregates.
type DashboardStore interface {
	// DashboardStats runs every dashboard query. date selects the day used for
	// the per-locality attendance breakdown.
	DashboardStats(ctx context.Context, date string) (*models.DashboardStats, error)
}

// Store is the full data access layer.
// This abstraction allows swapping storage backends without changing the service layer.
type Store interface {
	UserStore
	ParticipantStore
	SessionStore
	AttendanceStore
	DashboardStore

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
