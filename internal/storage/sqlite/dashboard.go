package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/studytracker/internal/models"
)

// DashboardStats runs the dashboard aggregate queries concurrently and merges
// the results. Any failing query fails the whole call.
func (s *SQLiteStore) DashboardStats(ctx context.Context, date string) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{
		AttendanceBySession:       []models.SessionAttendanceCount{},
		TopReferrers:              []models.ReferrerCount{},
		PerfectAttendance:         []models.ParticipantRef{},
		TodayAttendanceByLocality: []models.LocalityCount{},
		NewParticipantsByDay:      []models.JoinDayCount{},
		FutureBaptisms:            []models.ParticipantRef{},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants`).Scan(&stats.TotalParticipants)
		if err != nil {
			return fmt.Errorf("total participants: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.collect(ctx, "attendance by session",
			`SELECT s.session_date, COUNT(a.participant_id)
			 FROM study_sessions s
			 LEFT JOIN attendance a ON s.id = a.session_id AND a.attended = 1
			 GROUP BY s.session_date
			 ORDER BY s.session_date DESC
			 LIMIT 10`,
			nil,
			func(rows *sql.Rows) error {
				var row models.SessionAttendanceCount
				if err := rows.Scan(&row.SessionDate, &row.AttendanceCount); err != nil {
					return err
				}
				stats.AttendanceBySession = append(stats.AttendanceBySession, row)
				return nil
			})
	})

	g.Go(func() error {
		return s.collect(ctx, "top referrers",
			`SELECT p.id, p.name, COUNT(r.id) AS referral_count
			 FROM participants p
			 LEFT JOIN participants r ON p.id = r.referred_by_participant_id
			 GROUP BY p.id
			 HAVING referral_count > 0
			 ORDER BY referral_count DESC, p.name COLLATE NOCASE ASC
			 LIMIT 3`,
			nil,
			func(rows *sql.Rows) error {
				var row models.ReferrerCount
				if err := rows.Scan(&row.ID, &row.Name, &row.ReferralCount); err != nil {
					return err
				}
				stats.TopReferrers = append(stats.TopReferrers, row)
				return nil
			})
	})

	g.Go(func() error {
		return s.collect(ctx, "perfect attendance",
			`WITH sc AS (SELECT COUNT(*) AS total_sessions FROM study_sessions),
			      pa AS (
			          SELECT p.id, p.name, COUNT(a.id) AS attended_sessions
			          FROM participants p
			          LEFT JOIN attendance a ON p.id = a.participant_id AND a.attended = 1
			          GROUP BY p.id
			      )
			 SELECT pa.id, pa.name
			 FROM pa CROSS JOIN sc
			 WHERE pa.attended_sessions = sc.total_sessions AND sc.total_sessions > 0
			 ORDER BY pa.name COLLATE NOCASE ASC`,
			nil,
			func(rows *sql.Rows) error {
				var row models.ParticipantRef
				if err := rows.Scan(&row.ID, &row.Name); err != nil {
					return err
				}
				stats.PerfectAttendance = append(stats.PerfectAttendance, row)
				return nil
			})
	})

	g.Go(func() error {
		return s.collect(ctx, "attendance by locality",
			`SELECT p.locality, COUNT(DISTINCT a.participant_id) AS present_count
			 FROM participants p
			 JOIN attendance a ON p.id = a.participant_id
			 JOIN study_sessions s ON a.session_id = s.id
			 WHERE s.session_date = ? AND a.attended = 1
			   AND p.locality IS NOT NULL AND p.locality != ''
			 GROUP BY p.locality
			 ORDER BY present_count DESC, p.locality ASC`,
			[]any{date},
			func(rows *sql.Rows) error {
				var row models.LocalityCount
				if err := rows.Scan(&row.Locality, &row.PresentCount); err != nil {
					return err
				}
				stats.TodayAttendanceByLocality = append(stats.TodayAttendanceByLocality, row)
				return nil
			})
	})

	g.Go(func() error {
		return s.collect(ctx, "new participants by day",
			`SELECT date(date_joined) AS join_date, COUNT(*)
			 FROM participants
			 GROUP BY date(date_joined)
			 ORDER BY join_date DESC
			 LIMIT 30`,
			nil,
			func(rows *sql.Rows) error {
				var row models.JoinDayCount
				var joinDate sql.NullString
				if err := rows.Scan(&joinDate, &row.NewParticipants); err != nil {
					return err
				}
				row.JoinDate = joinDate.String
				stats.NewParticipantsByDay = append(stats.NewParticipantsByDay, row)
				return nil
			})
	})

	g.Go(func() error {
		return s.collect(ctx, "future baptisms",
			`SELECT id, name FROM participants WHERE baptism_interest = 1 ORDER BY name COLLATE NOCASE ASC`,
			nil,
			func(rows *sql.Rows) error {
				var row models.ParticipantRef
				if err := rows.Scan(&row.ID, &row.Name); err != nil {
					return err
				}
				stats.FutureBaptisms = append(stats.FutureBaptisms, row)
				return nil
			})
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}

	return stats, nil
}

// collect runs query and hands each row to scan. Each goroutine in
// DashboardStats writes to its own field, so no locking is needed.
func (s *SQLiteStore) collect(ctx context.Context, name, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("%s: scan: %w", name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
