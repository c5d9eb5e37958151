package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/mmynk/studytracker/internal/api"
	"github.com/mmynk/studytracker/internal/models"
	"github.com/mmynk/studytracker/internal/storage"
)

// DashboardService serves the aggregate statistics endpoint.
type DashboardService struct {
	store storage.DashboardStore
	now   func() time.Time
}

// NewDashboardService creates a new DashboardService with the given storage backend.
func NewDashboardService(store storage.DashboardStore) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// Stats returns every dashboard aggregate. The optional date query parameter
// selects the day for the per-locality breakdown and defaults to today.
func (s *DashboardService) Stats(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = s.now().Format(models.DateLayout)
	} else if !isDate(date) {
		writeError(w, r, badRequest("Invalid date. Use YYYY-MM-DD."))
		return
	}

	stats, err := s.store.DashboardStats(r.Context(), date)
	if err != nil {
		writeError(w, r, withMessage(err, "Error fetching dashboard statistics."))
		return
	}
	api.WriteJSON(w, http.StatusOK, stats)
}
