// Package memory implements services.Store in process memory. It backs the
// demo backend and the service tests; no environment sniffing happens in
// the business logic, the store is injected instead.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"kassza/internal/core"
)

// ErrNotFound aliases the core sentinel so callers can match it with
// errors.Is without importing this package.
var ErrNotFound = core.ErrNotFound

type Store struct {
	mu           sync.Mutex
	rules        map[string]*core.RecurringRule
	transactions map[string]*core.Transaction
	wallets      map[string]*core.Wallet
	categories   map[string]*core.Category
	budgets      map[string]*core.Budget
	goals        map[string]*core.SavingsGoal
}

func New() *Store {
	return &Store{
		rules:        make(map[string]*core.RecurringRule),
		transactions: make(map[string]*core.Transaction),
		wallets:      make(map[string]*core.Wallet),
		categories:   make(map[string]*core.Category),
		budgets:      make(map[string]*core.Budget),
		goals:        make(map[string]*core.SavingsGoal),
	}
}

// --- RuleStore ---

func (s *Store) ListActiveRules(_ context.Context, userID string) ([]core.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RecurringRule
	for _, r := range s.rules {
		if r.UserID == userID && r.IsActive {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) MaterializeOccurrence(_ context.Context, rule core.RecurringRule, tx core.Transaction, next core.Date) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.rules[rule.ID]
	if !exists || !stored.IsActive {
		return "", false, nil
	}
	// Compare-and-swap: the stored cursor must still sit on the occurrence
	// being materialized.
	cursor := stored.NextOccurrence
	if cursor.IsZero() {
		cursor = stored.StartDate
	}
	if !cursor.Equal(tx.Date) {
		return "", false, nil
	}

	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now()
	if err := s.insertLocked(&tx); err != nil {
		return "", false, err
	}
	stored.NextOccurrence = next
	return tx.ID, true, nil
}

func (s *Store) DeactivateRule(_ context.Context, ruleID string, cursor core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[ruleID]
	if !ok {
		return ErrNotFound
	}
	r.IsActive = false
	r.NextOccurrence = cursor
	return nil
}

func (s *Store) InitializeCursor(_ context.Context, ruleID string, cursor core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[ruleID]
	if !ok {
		return ErrNotFound
	}
	if r.NextOccurrence.IsZero() {
		r.NextOccurrence = cursor
	}
	return nil
}

// --- RuleAdminStore ---

func (s *Store) ListRules(_ context.Context, userID string) ([]core.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RecurringRule
	for _, r := range s.rules {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateRule(_ context.Context, rule core.RecurringRule) (string, error) {
	if err := rule.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	s.rules[rule.ID] = &rule
	return rule.ID, nil
}

func (s *Store) SetRuleActive(_ context.Context, userID, ruleID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[ruleID]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	r.IsActive = active
	return nil
}

func (s *Store) DeleteRule(_ context.Context, userID, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[ruleID]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	delete(s.rules, ruleID)
	return nil
}

// GetRule returns a copy of the stored rule. Test helper.
func (s *Store) GetRule(ruleID string) (core.RecurringRule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[ruleID]
	if !ok {
		return core.RecurringRule{}, false
	}
	return *r, true
}

// --- TransactionStore ---

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = uuid.NewString()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	if err := s.insertLocked(&tx); err != nil {
		return "", err
	}
	return tx.ID, nil
}

// insertLocked stores the row and applies its wallet balance deltas, the
// in-memory equivalent of the balance trigger contract. Nothing is stored
// when a referenced wallet is unknown to the owning user.
func (s *Store) insertLocked(tx *core.Transaction) error {
	if err := s.applyBalanceLocked(tx, 1); err != nil {
		return err
	}
	s.transactions[tx.ID] = tx
	return nil
}

// ownedWalletLocked resolves a wallet id for one user. Another user's
// wallet is indistinguishable from a missing one.
func (s *Store) ownedWalletLocked(userID, walletID string) (*core.Wallet, error) {
	w, ok := s.wallets[walletID]
	if !ok || w.UserID != userID {
		return nil, fmt.Errorf("wallet %s: %w", walletID, ErrNotFound)
	}
	return w, nil
}

func (s *Store) applyBalanceLocked(tx *core.Transaction, sign int64) error {
	amount := tx.Amount.Cents * sign
	if tx.ToWalletID != "" {
		from, err := s.ownedWalletLocked(tx.UserID, tx.WalletID)
		if err != nil {
			return err
		}
		to, err := s.ownedWalletLocked(tx.UserID, tx.ToWalletID)
		if err != nil {
			return err
		}
		from.Balance.Cents -= amount
		to.Balance.Cents += amount
		return nil
	}
	if tx.WalletID == "" {
		return nil
	}
	w, err := s.ownedWalletLocked(tx.UserID, tx.WalletID)
	if err != nil {
		return err
	}
	if tx.Type == core.Income {
		w.Balance.Cents += amount
	} else {
		w.Balance.Cents -= amount
	}
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return ErrNotFound
	}
	if err := s.applyBalanceLocked(tx, -1); err != nil {
		return err
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, ErrNotFound
	}
	return *tx, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// --- WalletStore ---

func (s *Store) ListWallets(_ context.Context, userID string) ([]core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Wallet
	for _, w := range s.wallets {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateWallet(_ context.Context, w core.Wallet) (string, error) {
	if err := w.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	s.wallets[w.ID] = &w
	return w.ID, nil
}

func (s *Store) UpdateWallet(_ context.Context, w core.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.wallets[w.ID]
	if !ok || stored.UserID != w.UserID {
		return ErrNotFound
	}
	s.wallets[w.ID] = &w
	return nil
}

func (s *Store) DeleteWallet(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok || w.UserID != userID {
		return ErrNotFound
	}
	for _, tx := range s.transactions {
		if tx.WalletID == id || tx.ToWalletID == id {
			return core.ErrWalletInUse
		}
	}
	delete(s.wallets, id)
	return nil
}

// --- CategoryStore ---

func (s *Store) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.UserID == userID || c.UserID == "" {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories[c.ID] = &c
	return c.ID, nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// --- BudgetStore ---

func budgetKey(userID, categoryID string, month, year int) string {
	return userID + "|" + categoryID + "|" + core.NewDate(year, month, 1).String()
}

func (s *Store) ListBudgets(_ context.Context, userID string, month, year int) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.UserID == userID && b.Month == month && b.Year == year {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := budgetKey(b.UserID, b.CategoryID, b.Month, b.Year)
	for id, existing := range s.budgets {
		if budgetKey(existing.UserID, existing.CategoryID, existing.Month, existing.Year) == key {
			b.ID = id
			s.budgets[id] = &b
			return nil
		}
	}
	b.ID = uuid.NewString()
	s.budgets[b.ID] = &b
	return nil
}

// --- SavingsStore ---

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.SavingsGoal
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateGoal(_ context.Context, g core.SavingsGoal) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	s.goals[g.ID] = &g
	return g.ID, nil
}

func (s *Store) AddToGoal(_ context.Context, userID, goalID string, delta core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return ErrNotFound
	}
	g.CurrentAmount.Cents += delta.Cents
	if g.CurrentAmount.Cents < 0 {
		g.CurrentAmount.Cents = 0
	}
	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		g.Status = core.GoalCompleted
	} else {
		g.Status = core.GoalActive
	}
	return nil
}

// ListUserIDsWithActiveRules returns the distinct owners of active rules.
func (s *Store) ListUserIDsWithActiveRules(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, r := range s.rules {
		if !r.IsActive {
			continue
		}
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		out = append(out, r.UserID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return ErrNotFound
	}
	delete(s.goals, id)
	return nil
}
