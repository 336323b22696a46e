package http

import (
	"log/slog"
	"net/http"
	"time"
)

// handleDashboard returns the aggregate behind the dashboard screen. The
// underlying service catches up recurring rules before computing, so the
// figures include every occurrence due up to today.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if stats, found := s.statsCache.Get(user); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "user_id", user)
		respondJSON(w, http.StatusOK, toDashboardView(stats))
		return
	}

	stats, err := s.dashboard.GetStats(r.Context(), user, time.Now())
	if err != nil {
		respondStoreError(w, r, err, "dashboard stats")
		return
	}

	s.statsCache.Set(user, stats)
	respondJSON(w, http.StatusOK, toDashboardView(stats))
}

// handleForecast returns the 4-month cashflow projection.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	months, err := s.forecast.Cashflow(r.Context(), user, time.Now())
	if err != nil {
		respondStoreError(w, r, err, "cashflow forecast")
		return
	}
	respondJSON(w, http.StatusOK, toForecastViews(months))
}
