package http

import (
	"net/http"
	"time"

	"kassza/internal/core"
)

// handleListBudgets returns the user's budgets for one calendar month,
// defaulting to the current one.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	month, year := parseMonthYear(r, time.Now())
	budgets, err := s.store.ListBudgets(r.Context(), user, month, year)
	if err != nil {
		respondStoreError(w, r, err, "list budgets")
		return
	}

	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, toBudgetView(b))
	}
	respondJSON(w, http.StatusOK, views)
}

type budgetRequest struct {
	CategoryID  string `json:"category_id"`
	AmountCents int64  `json:"amount_cents"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
}

// handleUpsertBudget inserts or replaces the budget keyed by
// (category, month, year).
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	budget := core.Budget{
		UserID:     user,
		CategoryID: req.CategoryID,
		Amount:     core.Money{Cents: req.AmountCents},
		Month:      req.Month,
		Year:       req.Year,
	}
	if err := budget.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.UpsertBudget(r.Context(), budget); err != nil {
		respondStoreError(w, r, err, "upsert budget")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusOK, toBudgetView(budget))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	goals, err := s.store.ListGoals(r.Context(), user)
	if err != nil {
		respondStoreError(w, r, err, "list savings goals")
		return
	}

	views := make([]savingsGoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, toSavingsGoalView(g))
	}
	respondJSON(w, http.StatusOK, views)
}

type savingsGoalRequest struct {
	Name        string `json:"name"`
	TargetCents int64  `json:"target_cents"`
	Deadline    string `json:"deadline"`
	Color       string `json:"color"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req savingsGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var deadline core.Date
	if req.Deadline != "" {
		var err error
		if deadline, err = core.ParseDate(req.Deadline); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid deadline, expected YYYY-MM-DD")
			return
		}
	}

	goal := core.SavingsGoal{
		UserID:       user,
		Name:         sanitizeInput(req.Name),
		TargetAmount: core.Money{Cents: req.TargetCents},
		Deadline:     deadline,
		Status:       core.GoalActive,
		Color:        req.Color,
	}
	if err := goal.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.CreateGoal(r.Context(), goal)
	if err != nil {
		respondStoreError(w, r, err, "create savings goal")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteGoal(r.Context(), user, r.PathValue("id")); err != nil {
		respondStoreError(w, r, err, "delete savings goal")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusNoContent, nil)
}
