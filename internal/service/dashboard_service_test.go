package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/studytracker/internal/models"
)

type stubDashboard struct {
	date  string
	stats *models.DashboardStats
	err   error
}

func (s *stubDashboard) DashboardStats(_ context.Context, date string) (*models.DashboardStats, error) {
	s.date = date
	return s.stats, s.err
}

func TestDashboardStats(t *testing.T) {
	fixed := func() time.Time { return time.Date(2025, 1, 10, 18, 30, 0, 0, time.Local) }

	t.Run("defaults to today", func(t *testing.T) {
		store := &stubDashboard{stats: &models.DashboardStats{TotalParticipants: 3}}
		svc := &DashboardService{store: store, now: fixed}

		rec := httptest.NewRecorder()
		svc.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2025-01-10", store.date)

		var got models.DashboardStats
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, int64(3), got.TotalParticipants)
	})

	t.Run("explicit date", func(t *testing.T) {
		store := &stubDashboard{stats: &models.DashboardStats{}}
		svc := &DashboardService{store: store, now: fixed}

		rec := httptest.NewRecorder()
		svc.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats?date=2024-12-25", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2024-12-25", store.date)
	})

	t.Run("bad date never reaches the store", func(t *testing.T) {
		store := &stubDashboard{}
		svc := &DashboardService{store: store, now: fixed}

		rec := httptest.NewRecorder()
		svc.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats?date=10/01/2025", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, store.date)
	})

	t.Run("query failure is a 500", func(t *testing.T) {
		store := &stubDashboard{err: errors.New("database is locked")}
		svc := &DashboardService{store: store, now: fixed}

		rec := httptest.NewRecorder()
		svc.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Error fetching dashboard statistics.")
	})
}
