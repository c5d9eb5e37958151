package calculator

import (
	"fmt"
	"math"

	"github.com/mmynk/studytracker/internal/models"
)

// Rate returns attended/total as a percentage rounded to two decimals.
// A group with no sessions yet yields 0.
func Rate(attended, total int64) (float64, error) {
	if attended < 0 || total < 0 {
		return 0, fmt.Errorf("attendance counts must not be negative (attended=%d, total=%d)", attended, total)
	}
	if attended > total {
		return 0, fmt.Errorf("attended sessions %d exceed total sessions %d", attended, total)
	}
	if total == 0 {
		return 0, nil
	}

	pct := float64(attended) / float64(total) * 100
	return math.Round(pct*100) / 100, nil
}

// ApplyRates fills AttendanceRate on every summary in place.
func ApplyRates(summaries []*models.AttendanceSummary) error {
	for _, s := range summaries {
		rate, err := Rate(s.AttendedSessions, s.TotalSessions)
		if err != nil {
			return fmt.Errorf("participant %d: %w", s.ID, err)
		}
		s.AttendanceRate = rate
	}
	return nil
}

// IsPerfect reports whether a participant attended every session.
// Nobody has perfect attendance before the first session.
func IsPerfect(attended, total int64) bool {
	return total > 0 && attended == total
}
