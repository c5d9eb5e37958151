package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/mmynk/studytracker/internal/models"
	"github.com/mmynk/studytracker/internal/storage"
)

// seedGroup creates participants with the given names and sessions on the given dates.
func seedGroup(t *testing.T, store *SQLiteStore, names []string, dates []string) ([]*models.Participant, []*models.StudySession) {
	t.Helper()
	ctx := context.Background()

	participants := make([]*models.Participant, 0, len(names))
	for _, name := range names {
		p := &models.Participant{Name: name, DateJoined: "2025-01-01"}
		if err := store.CreateParticipant(ctx, p); err != nil {
			t.Fatalf("CreateParticipant(%s) failed: %v", name, err)
		}
		participants = append(participants, p)
	}

	sessions := make([]*models.StudySession, 0, len(dates))
	for _, date := range dates {
		s := &models.StudySession{SessionDate: date}
		if err := store.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession(%s) failed: %v", date, err)
		}
		sessions = append(sessions, s)
	}

	return participants, sessions
}

func TestSaveAttendance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	people, sessions := seedGroup(t, store, []string{"Alice", "Bob", "Carol"}, []string{"2025-01-10"})
	session := sessions[0]

	t.Run("roster lists everyone as absent before any marks", func(t *testing.T) {
		roster, err := store.SessionRoster(ctx, session.ID)
		if err != nil {
			t.Fatalf("SessionRoster failed: %v", err)
		}
		if len(roster) != 3 {
			t.Fatalf("Expected 3 roster entries, got %d", len(roster))
		}
		for _, entry := range roster {
			if entry.Attended || entry.AttendanceID != nil {
				t.Errorf("Expected %s to be unmarked, got %+v", entry.ParticipantName, entry)
			}
		}
	})

	t.Run("upsert inserts then updates", func(t *testing.T) {
		records := []models.AttendanceRecord{
			{SessionID: session.ID, ParticipantID: people[0].ID, Attended: true, Notes: ptr("on time")},
			{SessionID: session.ID, ParticipantID: people[1].ID, Attended: false},
		}
		if err := store.SaveAttendance(ctx, records); err != nil {
			t.Fatalf("SaveAttendance failed: %v", err)
		}

		records[1].Attended = true
		records[1].Notes = ptr("late")
		if err := store.SaveAttendance(ctx, records[1:]); err != nil {
			t.Fatalf("SaveAttendance update failed: %v", err)
		}

		roster, err := store.SessionRoster(ctx, session.ID)
		if err != nil {
			t.Fatalf("SessionRoster failed: %v", err)
		}
		byName := map[string]*models.RosterEntry{}
		for _, entry := range roster {
			byName[entry.ParticipantName] = entry
		}

		if !byName["Alice"].Attended || byName["Alice"].Notes == nil || *byName["Alice"].Notes != "on time" {
			t.Errorf("Unexpected Alice entry: %+v", byName["Alice"])
		}
		if !byName["Bob"].Attended || byName["Bob"].Notes == nil || *byName["Bob"].Notes != "late" {
			t.Errorf("Unexpected Bob entry: %+v", byName["Bob"])
		}
		if byName["Carol"].Attended || byName["Carol"].AttendanceID != nil {
			t.Errorf("Expected Carol to be unmarked, got %+v", byName["Carol"])
		}
	})

	t.Run("a failing record rolls back the whole batch", func(t *testing.T) {
		before, err := store.SessionRoster(ctx, session.ID)
		if err != nil {
			t.Fatalf("SessionRoster failed: %v", err)
		}

		records := []models.AttendanceRecord{
			{SessionID: session.ID, ParticipantID: people[0].ID, Attended: false},
			{SessionID: session.ID, ParticipantID: people[1].ID, Attended: false},
			{SessionID: session.ID, ParticipantID: 9999, Attended: true},
			{SessionID: session.ID, ParticipantID: people[2].ID, Attended: true},
			{SessionID: session.ID, ParticipantID: people[2].ID, Attended: true, Notes: ptr("dup")},
		}
		err = store.SaveAttendance(ctx, records)
		if !errors.Is(err, storage.ErrInvalidReference) {
			t.Fatalf("Expected ErrInvalidReference, got %v", err)
		}

		after, err := store.SessionRoster(ctx, session.ID)
		if err != nil {
			t.Fatalf("SessionRoster failed: %v", err)
		}
		for i := range before {
			if before[i].Attended != after[i].Attended {
				t.Errorf("Expected %s to be unchanged after rollback", before[i].ParticipantName)
			}
		}
	})

	t.Run("unknown session is an invalid reference", func(t *testing.T) {
		err := store.SaveAttendance(ctx, []models.AttendanceRecord{
			{SessionID: 9999, ParticipantID: people[0].ID, Attended: true},
		})
		if !errors.Is(err, storage.ErrInvalidReference) {
			t.Errorf("Expected ErrInvalidReference, got %v", err)
		}
	})

	t.Run("deleting a session cascades its attendance", func(t *testing.T) {
		if _, err := store.DeleteSession(ctx, session.ID); err != nil {
			t.Fatalf("DeleteSession failed: %v", err)
		}
		summaries, err := store.AttendanceSummaries(ctx)
		if err != nil {
			t.Fatalf("AttendanceSummaries failed: %v", err)
		}
		for _, s := range summaries {
			if s.AttendedSessions != 0 || s.TotalSessions != 0 {
				t.Errorf("Expected no attendance left for %s, got %+v", s.Name, s)
			}
		}
	})
}

func TestAttendanceSummaries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	people, sessions := seedGroup(t, store, []string{"Alice", "Bob"}, []string{"2025-01-10", "2025-01-17"})

	err := store.SaveAttendance(ctx, []models.AttendanceRecord{
		{SessionID: sessions[0].ID, ParticipantID: people[0].ID, Attended: true},
		{SessionID: sessions[1].ID, ParticipantID: people[0].ID, Attended: true},
		{SessionID: sessions[0].ID, ParticipantID: people[1].ID, Attended: true},
		{SessionID: sessions[1].ID, ParticipantID: people[1].ID, Attended: false},
	})
	if err != nil {
		t.Fatalf("SaveAttendance failed: %v", err)
	}

	summaries, err := store.AttendanceSummaries(ctx)
	if err != nil {
		t.Fatalf("AttendanceSummaries failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}

	if summaries[0].Name != "Alice" || summaries[0].AttendedSessions != 2 || summaries[0].TotalSessions != 2 {
		t.Errorf("Unexpected Alice summary: %+v", summaries[0])
	}
	if summaries[1].Name != "Bob" || summaries[1].AttendedSessions != 1 || summaries[1].TotalSessions != 2 {
		t.Errorf("Unexpected Bob summary: %+v", summaries[1])
	}

	t.Run("deleting a participant cascades their attendance", func(t *testing.T) {
		if _, err := store.DeleteParticipant(ctx, people[0].ID); err != nil {
			t.Fatalf("DeleteParticipant failed: %v", err)
		}
		roster, err := store.SessionRoster(ctx, sessions[0].ID)
		if err != nil {
			t.Fatalf("SessionRoster failed: %v", err)
		}
		if len(roster) != 1 || roster[0].ParticipantName != "Bob" {
			t.Errorf("Expected only Bob on the roster, got %+v", roster)
		}
	})
}
