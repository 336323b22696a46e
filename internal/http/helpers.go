package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kassza/internal/core"
)

// userHeader carries the caller's identity. Authentication itself lives in
// the reverse proxy in front of the service.
const userHeader = "X-User-ID"

const maxBodyBytes = 1 << 20

func currentUser(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(userHeader))
}

// requireUser extracts the caller's identity or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := currentUser(r)
	if user == "" {
		respondError(w, http.StatusUnauthorized, "missing "+userHeader+" header")
		return "", false
	}
	return user, true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondStoreError maps store failures onto HTTP statuses.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if errors.Is(err, core.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	slog.ErrorContext(r.Context(), "Store operation failed", "operation", operation, "error", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	return dec.Decode(dst)
}

// parseDateOrToday parses a YYYY-MM-DD value, defaulting to the current day
// when the value is empty.
func parseDateOrToday(s string, now time.Time) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.DateOf(now), nil
	}
	return core.ParseDate(s)
}

// parseMonthYear extracts month and year query parameters, using the
// current calendar month as default.
func parseMonthYear(r *http.Request, now time.Time) (month, year int) {
	month = int(now.Month())
	year = now.Year()
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y >= 1 {
			year = y
		}
	}
	return month, year
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
