package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/studytracker/internal/models"
	"github.com/mmynk/studytracker/internal/storage"
)

// ListSessions returns all sessions, most recent first.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]*models.StudySession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_date, topic, created_at, updated_at
		 FROM study_sessions
		 ORDER BY session_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.StudySession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id int64) (*models.StudySession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_date, topic, created_at, updated_at FROM study_sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// CreateSession inserts a session. The UNIQUE constraint on session_date
// rejects a second session for the same day, even under concurrent inserts.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.StudySession) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO study_sessions (session_date, topic) VALUES (?, ?)`,
		session.SessionDate, nullString(session.Topic),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", classify(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read session id: %w", err)
	}
	session.ID = id

	return nil
}

// UpdateSession replaces the date and topic of a session.
func (s *SQLiteStore) UpdateSession(ctx context.Context, session *models.StudySession) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE study_sessions SET session_date = ?, topic = ? WHERE id = ?`,
		session.SessionDate, nullString(session.Topic), session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", classify(err))
	}
	_, err = affectedOrNotFound(res)
	return err
}

// DeleteSession removes a session; its attendance rows cascade.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete session: %w", classify(err))
	}
	return affectedOrNotFound(res)
}

func scanSession(row rowScanner) (*models.StudySession, error) {
	session := &models.StudySession{}
	var topic sql.NullString
	if err := row.Scan(&session.ID, &session.SessionDate, &topic, &session.CreatedAt, &session.UpdatedAt); err != nil {
		return nil, err
	}
	session.Topic = stringPtr(topic)
	return session, nil
}
