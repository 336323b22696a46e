// Package http exposes the JSON API: dashboard, ledger writes, recurring
// rule administration and the cashflow forecast. Every read that needs
// current data goes through a service that runs the recurrence catch-up
// first.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kassza/internal/cache"
	"kassza/internal/core"
	"kassza/internal/services"
)

const (
	statsCacheSize = 500
	statsCacheTTL  = time.Minute

	writeRequestsPerMinute = 60
)

type Server struct {
	http.Server

	store     services.Store
	txService *services.TransactionService
	dashboard *services.DashboardService
	forecast  *services.ForecastService

	rateLimiter *rateLimiter

	// statsCache holds per-user dashboard aggregates; every write path
	// invalidates the owner's entry so a stale TTL window never spans a
	// ledger change made through this process.
	statsCache *cache.LRUCache[core.DashboardStats]
	cacheMgr   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires the services over the given store and configures routes,
// returning a ready-to-run http.Server.
func NewServer(addr string, store services.Store, events services.EventPublisher) *Server {
	mux := http.NewServeMux()

	engine := services.NewCatchUpEngine(store, events)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:       store,
		txService:   services.NewTransactionService(store, engine, events),
		dashboard:   services.NewDashboardService(store, engine),
		forecast:    services.NewForecastService(store, engine),
		rateLimiter: newRateLimiter(writeRequestsPerMinute),
		statsCache:  cache.NewLRUCache[core.DashboardStats](statsCacheSize, statsCacheTTL),
		cacheMgr:    cache.NewManager(),
	}

	s.cacheMgr.Register(s.statsCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/dashboard", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("GET /api/forecast", s.withMiddleware(s.handleForecast))

	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/transfers", s.withMiddleware(s.handleCreateTransfer))
	mux.HandleFunc("POST /api/savings-allocations", s.withMiddleware(s.handleCreateSavingsAllocation))

	mux.HandleFunc("GET /api/recurring-rules", s.withMiddleware(s.handleListRules))
	mux.HandleFunc("POST /api/recurring-rules", s.withMiddleware(s.handleCreateRule))
	mux.HandleFunc("POST /api/recurring-rules/{id}/toggle", s.withMiddleware(s.handleToggleRule))
	mux.HandleFunc("DELETE /api/recurring-rules/{id}", s.withMiddleware(s.handleDeleteRule))

	mux.HandleFunc("GET /api/wallets", s.withMiddleware(s.handleListWallets))
	mux.HandleFunc("POST /api/wallets", s.withMiddleware(s.handleCreateWallet))
	mux.HandleFunc("PUT /api/wallets/{id}", s.withMiddleware(s.handleUpdateWallet))
	mux.HandleFunc("DELETE /api/wallets/{id}", s.withMiddleware(s.handleDeleteWallet))

	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withMiddleware(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withMiddleware(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/budgets", s.withMiddleware(s.handleListBudgets))
	mux.HandleFunc("PUT /api/budgets", s.withMiddleware(s.handleUpsertBudget))

	mux.HandleFunc("GET /api/savings-goals", s.withMiddleware(s.handleListGoals))
	mux.HandleFunc("POST /api/savings-goals", s.withMiddleware(s.handleCreateGoal))
	mux.HandleFunc("DELETE /api/savings-goals/{id}", s.withMiddleware(s.handleDeleteGoal))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateStats drops the cached dashboard aggregate of one user.
func (s *Server) invalidateStats(userID string) {
	s.statsCache.Delete(userID)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Global categories exist from the first migration, so the query both
	// probes the store and verifies the schema is in place.
	if _, err := s.store.ListCategories(ctx, ""); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"store":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":               "ready",
		"rate_limited_clients": s.rateLimiter.activeClients(),
	})
}
