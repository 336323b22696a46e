package http

import (
	"net/http"
	"time"

	"kassza/internal/core"
)

type createTransactionRequest struct {
	CategoryID  string `json:"category_id"`
	WalletID    string `json:"wallet_id"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Type        string `json:"type"`
}

// handleListTransactions returns the user's ledger, newest first. The
// service catches up recurring rules before reading.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	txs, err := s.txService.List(r.Context(), user, core.DateOf(time.Now()))
	if err != nil {
		respondStoreError(w, r, err, "list transactions")
		return
	}
	respondJSON(w, http.StatusOK, toTransactionViews(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDateOrToday(req.Date, time.Now())
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	tx := core.Transaction{
		UserID:      user,
		CategoryID:  req.CategoryID,
		WalletID:    req.WalletID,
		Amount:      core.Money{Cents: req.AmountCents},
		Description: sanitizeInput(req.Description),
		Date:        date,
		Type:        core.TransactionType(req.Type),
	}
	if err := tx.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.txService.Create(r.Context(), tx)
	if err != nil {
		respondStoreError(w, r, err, "create transaction")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.txService.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		respondStoreError(w, r, err, "delete transaction")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusNoContent, nil)
}

type createTransferRequest struct {
	FromWalletID string `json:"from_wallet_id"`
	ToWalletID   string `json:"to_wallet_id"`
	AmountCents  int64  `json:"amount_cents"`
	Date         string `json:"date"`
}

// handleCreateTransfer moves money between two wallets of the user. The
// resulting row is a system movement excluded from category reporting.
func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDateOrToday(req.Date, time.Now())
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	// Pre-validate the movement so malformed input reports 422 and only
	// store failures reach the 5xx path.
	probe := core.Transaction{
		UserID:      user,
		WalletID:    req.FromWalletID,
		ToWalletID:  req.ToWalletID,
		Amount:      core.Money{Cents: req.AmountCents},
		Description: "transfer",
		Date:        date,
		Type:        core.Expense,
	}
	if err := probe.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.txService.Transfer(r.Context(), user, req.FromWalletID, req.ToWalletID,
		core.Money{Cents: req.AmountCents}, date)
	if err != nil {
		respondStoreError(w, r, err, "create transfer")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type savingsAllocationRequest struct {
	WalletID    string `json:"wallet_id"`
	GoalID      string `json:"goal_id"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date"`
}

// handleCreateSavingsAllocation moves money from a wallet into a savings
// goal: one system-movement expense plus the goal credit.
func (s *Server) handleCreateSavingsAllocation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req savingsAllocationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDateOrToday(req.Date, time.Now())
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	if err := (core.Money{Cents: req.AmountCents}).Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.GoalID == "" {
		respondError(w, http.StatusUnprocessableEntity, "goal_id is required")
		return
	}

	id, err := s.txService.AllocateToSavings(r.Context(), user, req.WalletID, req.GoalID,
		core.Money{Cents: req.AmountCents}, date)
	if err != nil {
		respondStoreError(w, r, err, "create savings allocation")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}
