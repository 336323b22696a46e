package http

import (
	"net/http"

	"kassza/internal/core"
)

type createRuleRequest struct {
	CategoryID  string `json:"category_id"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Frequency   string `json:"frequency"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	rules, err := s.store.ListRules(r.Context(), user)
	if err != nil {
		respondStoreError(w, r, err, "list recurring rules")
		return
	}

	views := make([]recurringRuleView, 0, len(rules))
	for _, rule := range rules {
		views = append(views, toRecurringRuleView(rule))
	}
	respondJSON(w, http.StatusOK, views)
}

// handleCreateRule registers a recurring rule. New rules start active with
// no cursor; the first catch-up materializes from the start date.
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startDate, err := core.ParseDate(req.StartDate)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	var endDate core.Date
	if req.EndDate != "" {
		if endDate, err = core.ParseDate(req.EndDate); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid end_date, expected YYYY-MM-DD")
			return
		}
	}

	rule := core.RecurringRule{
		UserID:      user,
		CategoryID:  req.CategoryID,
		Amount:      core.Money{Cents: req.AmountCents},
		Description: sanitizeInput(req.Description),
		Type:        core.TransactionType(req.Type),
		Frequency:   core.Frequency(req.Frequency),
		StartDate:   startDate,
		EndDate:     endDate,
		IsActive:    true,
	}
	if err := rule.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.CreateRule(r.Context(), rule)
	if err != nil {
		respondStoreError(w, r, err, "create recurring rule")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type toggleRuleRequest struct {
	IsActive bool `json:"is_active"`
}

func (s *Server) handleToggleRule(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req toggleRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SetRuleActive(r.Context(), user, r.PathValue("id"), req.IsActive); err != nil {
		respondStoreError(w, r, err, "toggle recurring rule")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusOK, map[string]bool{"is_active": req.IsActive})
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteRule(r.Context(), user, r.PathValue("id")); err != nil {
		respondStoreError(w, r, err, "delete recurring rule")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusNoContent, nil)
}
