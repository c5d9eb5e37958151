package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/studytracker/internal/models"
	"github.com/mmynk/studytracker/internal/storage"
)

const participantSelect = `
	SELECT p.id, p.name, p.contact_info, p.age, p.gender, p.main_address, p.locality,
	       p.date_joined, p.referred_by_participant_id, p.baptism_interest,
	       p.created_at, p.updated_at, ref.name
	FROM participants p
	LEFT JOIN participants ref ON p.referred_by_participant_id = ref.id
`

// ListParticipants returns all participants with their referrer's name,
// ordered case-insensitively by name.
func (s *SQLiteStore) ListParticipants(ctx context.Context) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, participantSelect+` ORDER BY p.name COLLATE NOCASE ASC, p.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// GetParticipant retrieves a participant by ID.
func (s *SQLiteStore) GetParticipant(ctx context.Context, id int64) (*models.Participant, error) {
	row := s.db.QueryRowContext(ctx, participantSelect+` WHERE p.id = ?`, id)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// CreateParticipant persists a new participant. DateJoined defaults to today.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	if p.DateJoined == "" {
		p.DateJoined = time.Now().Format(models.DateLayout)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (name, contact_info, age, gender, main_address, locality,
		                           date_joined, referred_by_participant_id, baptism_interest)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, nullString(p.ContactInfo), nullInt(p.Age), nullString(p.Gender),
		nullString(p.MainAddress), nullString(p.Locality), p.DateJoined,
		nullInt(p.ReferredByParticipantID), p.BaptismInterest,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", classify(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read participant id: %w", err)
	}
	p.ID = id

	return nil
}

// UpdateParticipant replaces the mutable fields of an existing participant
// and returns the number of changed rows.
func (s *SQLiteStore) UpdateParticipant(ctx context.Context, p *models.Participant) (int64, error) {
	var dateJoined any
	if p.DateJoined != "" {
		dateJoined = p.DateJoined
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE participants
		 SET name = ?, contact_info = ?, age = ?, gender = ?, main_address = ?, locality = ?,
		     date_joined = COALESCE(?, date_joined), referred_by_participant_id = ?, baptism_interest = ?
		 WHERE id = ?`,
		p.Name, nullString(p.ContactInfo), nullInt(p.Age), nullString(p.Gender),
		nullString(p.MainAddress), nullString(p.Locality), dateJoined,
		nullInt(p.ReferredByParticipantID), p.BaptismInterest, p.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update participant: %w", classify(err))
	}

	return affectedOrNotFound(res)
}

// SetBaptismInterest updates only the baptism interest flag.
func (s *SQLiteStore) SetBaptismInterest(ctx context.Context, id int64, interested bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE participants SET baptism_interest = ? WHERE id = ?`, interested, id)
	if err != nil {
		return fmt.Errorf("failed to update baptism interest: %w", classify(err))
	}
	_, err = affectedOrNotFound(res)
	return err
}

// DeleteParticipant removes a participant. Foreign keys cascade the
// attendance rows and null out referrer links.
func (s *SQLiteStore) DeleteParticipant(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete participant: %w", classify(err))
	}
	return affectedOrNotFound(res)
}

// ListBaptismCandidates returns participants interested in baptism.
func (s *SQLiteStore) ListBaptismCandidates(ctx context.Context) ([]*models.BaptismCandidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, contact_info, locality
		 FROM participants
		 WHERE baptism_interest = 1
		 ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list baptism candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*models.BaptismCandidate, 0)
	for rows.Next() {
		c := &models.BaptismCandidate{}
		var contact, locality sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &contact, &locality); err != nil {
			return nil, fmt.Errorf("failed to scan baptism candidate: %w", err)
		}
		c.ContactInfo = stringPtr(contact)
		c.Locality = stringPtr(locality)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate baptism candidates: %w", err)
	}

	return candidates, nil
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	p := &models.Participant{}
	var (
		contact, gender, address, locality, referrerName sql.NullString
		age, referrerID                                  sql.NullInt64
	)

	err := row.Scan(
		&p.ID, &p.Name, &contact, &age, &gender, &address, &locality,
		&p.DateJoined, &referrerID, &p.BaptismInterest,
		&p.CreatedAt, &p.UpdatedAt, &referrerName,
	)
	if err != nil {
		return nil, err
	}

	p.ContactInfo = stringPtr(contact)
	p.Age = intPtr(age)
	p.Gender = stringPtr(gender)
	p.MainAddress = stringPtr(address)
	p.Locality = stringPtr(locality)
	p.ReferredByParticipantID = intPtr(referrerID)
	p.ReferrerName = stringPtr(referrerName)

	return p, nil
}

// affectedOrNotFound returns the affected row count, or ErrNotFound when it is zero.
func affectedOrNotFound(res sql.Result) (int64, error) {
	changed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if changed == 0 {
		return 0, storage.ErrNotFound
	}
	return changed, nil
}
