package http

import (
	"errors"
	"net/http"

	"kassza/internal/core"
)

type walletRequest struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	BalanceCents int64  `json:"balance_cents"`
	Currency     string `json:"currency"`
	Color        string `json:"color"`
}

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	wallets, err := s.store.ListWallets(r.Context(), user)
	if err != nil {
		respondStoreError(w, r, err, "list wallets")
		return
	}

	views := make([]walletView, 0, len(wallets))
	for _, wallet := range wallets {
		views = append(views, toWalletView(wallet))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wallet := core.Wallet{
		UserID:   user,
		Name:     sanitizeInput(req.Name),
		Type:     core.WalletType(req.Type),
		Balance:  core.Money{Cents: req.BalanceCents},
		Currency: req.Currency,
		Color:    req.Color,
	}
	if wallet.Currency == "" {
		wallet.Currency = "HUF"
	}
	if err := wallet.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.CreateWallet(r.Context(), wallet)
	if err != nil {
		respondStoreError(w, r, err, "create wallet")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wallet := core.Wallet{
		ID:       r.PathValue("id"),
		UserID:   user,
		Name:     sanitizeInput(req.Name),
		Type:     core.WalletType(req.Type),
		Balance:  core.Money{Cents: req.BalanceCents},
		Currency: req.Currency,
		Color:    req.Color,
	}
	if err := wallet.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.UpdateWallet(r.Context(), wallet); err != nil {
		respondStoreError(w, r, err, "update wallet")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusOK, toWalletView(wallet))
}

// handleDeleteWallet removes a wallet; the store refuses when transactions
// still reference it.
func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteWallet(r.Context(), user, r.PathValue("id")); err != nil {
		if errors.Is(err, core.ErrWalletInUse) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondStoreError(w, r, err, "delete wallet")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusNoContent, nil)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// handleListCategories returns the user's categories plus the global
// defaults seeded by the migrations.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	categories, err := s.store.ListCategories(r.Context(), user)
	if err != nil {
		respondStoreError(w, r, err, "list categories")
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, toCategoryView(c))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := core.Category{
		UserID: user,
		Name:   sanitizeInput(req.Name),
		Type:   core.TransactionType(req.Type),
		Icon:   req.Icon,
		Color:  req.Color,
	}
	if category.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, core.ErrEmptyName.Error())
		return
	}
	if err := category.Type.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.CreateCategory(r.Context(), category)
	if err != nil {
		respondStoreError(w, r, err, "create category")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteCategory(r.Context(), user, r.PathValue("id")); err != nil {
		respondStoreError(w, r, err, "delete category")
		return
	}

	s.invalidateStats(user)
	respondJSON(w, http.StatusNoContent, nil)
}
