package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/studytracker/internal/models"
)

const upsertAttendance = `
	INSERT INTO attendance (session_id, participant_id, attended, notes, updated_at)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (session_id, participant_id) DO UPDATE SET
		attended = excluded.attended,
		notes = excluded.notes,
		updated_at = CURRENT_TIMESTAMP
`

// SessionRoster returns every participant left-joined to its attendance row for
// the session. Participants without a row are reported as absent.
func (s *SQLiteStore) SessionRoster(ctx context.Context, sessionID int64) ([]*models.RosterEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, a.id, COALESCE(a.attended, 0), a.notes
		 FROM participants p
		 LEFT JOIN attendance a ON p.id = a.participant_id AND a.session_id = ?
		 ORDER BY p.name COLLATE NOCASE ASC, p.id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get session roster: %w", err)
	}
	defer rows.Close()

	roster := make([]*models.RosterEntry, 0)
	for rows.Next() {
		entry := &models.RosterEntry{}
		var attendanceID sql.NullInt64
		var notes sql.NullString
		if err := rows.Scan(&entry.ParticipantID, &entry.ParticipantName, &attendanceID, &entry.Attended, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		entry.AttendanceID = intPtr(attendanceID)
		entry.Notes = stringPtr(notes)
		roster = append(roster, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster: %w", err)
	}

	return roster, nil
}

// SaveAttendance upserts every record inside a single transaction.
// The first failing record rolls back the whole batch.
func (s *SQLiteStore) SaveAttendance(ctx context.Context, records []models.AttendanceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertAttendance)
	if err != nil {
		return fmt.Errorf("failed to prepare attendance upsert: %w", err)
	}
	defer stmt.Close()

	for i, record := range records {
		_, err := stmt.ExecContext(ctx,
			record.SessionID, record.ParticipantID, record.Attended, nullString(record.Notes),
		)
		if err != nil {
			return fmt.Errorf("failed to save attendance record %d (session %d, participant %d): %w",
				i, record.SessionID, record.ParticipantID, classify(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AttendanceSummaries returns, for each participant, how many sessions they
// attended and how many sessions exist.
func (s *SQLiteStore) AttendanceSummaries(ctx context.Context) ([]*models.AttendanceSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`WITH ts AS (SELECT COUNT(*) AS total FROM study_sessions),
		      pa AS (
		          SELECT p.id, p.name, COUNT(a.id) AS attended_sessions
		          FROM participants p
		          LEFT JOIN attendance a ON p.id = a.participant_id AND a.attended = 1
		          GROUP BY p.id
		      )
		 SELECT pa.id, pa.name, pa.attended_sessions, ts.total
		 FROM pa CROSS JOIN ts
		 ORDER BY pa.name COLLATE NOCASE ASC, pa.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance summary: %w", err)
	}
	defer rows.Close()

	summaries := make([]*models.AttendanceSummary, 0)
	for rows.Next() {
		summary := &models.AttendanceSummary{}
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.AttendedSessions, &summary.TotalSessions); err != nil {
			return nil, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance summary: %w", err)
	}

	return summaries, nil
}
