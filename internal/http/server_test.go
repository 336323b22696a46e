package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kassza/internal/storage/memory"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(":0", memory.New(), nil)
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(func() {
		ts.Close()
		if err := srv.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})
	return srv, ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, user string, body any) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func decodeInto(t *testing.T, data []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	status, _ := doJSON(t, ts, http.MethodGet, "/healthz", "", nil)
	if status != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want 200", status)
	}
	status, body := doJSON(t, ts, http.MethodGet, "/readyz", "", nil)
	if status != http.StatusOK {
		t.Errorf("GET /readyz status = %d, want 200", status)
	}
	var ready map[string]any
	decodeInto(t, body, &ready)
	if ready["status"] != "ready" {
		t.Errorf("readyz status field = %v, want ready", ready["status"])
	}
	if _, ok := ready["rate_limited_clients"]; !ok {
		t.Error("readyz should report the limiter's tracked client count")
	}
}

func TestMissingUserHeaderIsUnauthorized(t *testing.T) {
	_, ts := newTestServer(t)

	paths := []string{"/api/dashboard", "/api/transactions", "/api/wallets", "/api/recurring-rules"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			status, _ := doJSON(t, ts, http.MethodGet, path, "", nil)
			if status != http.StatusUnauthorized {
				t.Errorf("GET %s status = %d, want 401", path, status)
			}
		})
	}
}

func TestWalletLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := doJSON(t, ts, http.MethodPost, "/api/wallets", "u1", walletRequest{
		Name: "Bankszámla", Type: "bank", BalanceCents: 100_000,
	})
	if status != http.StatusCreated {
		t.Fatalf("create wallet status = %d, body %s", status, body)
	}
	var created map[string]string
	decodeInto(t, body, &created)

	status, body = doJSON(t, ts, http.MethodGet, "/api/wallets", "u1", nil)
	if status != http.StatusOK {
		t.Fatalf("list wallets status = %d", status)
	}
	var wallets []walletView
	decodeInto(t, body, &wallets)
	if len(wallets) != 1 || wallets[0].ID != created["id"] {
		t.Fatalf("wallets = %+v, want the created one", wallets)
	}
	if wallets[0].Currency != "HUF" {
		t.Errorf("default currency = %q, want HUF", wallets[0].Currency)
	}

	// Another user sees nothing.
	status, body = doJSON(t, ts, http.MethodGet, "/api/wallets", "u2", nil)
	if status != http.StatusOK {
		t.Fatalf("list wallets as u2 status = %d", status)
	}
	var other []walletView
	decodeInto(t, body, &other)
	if len(other) != 0 {
		t.Errorf("u2 wallets = %+v, want none", other)
	}
}

func TestCreateTransactionAppliesWalletBalance(t *testing.T) {
	_, ts := newTestServer(t)

	_, body := doJSON(t, ts, http.MethodPost, "/api/wallets", "u1", walletRequest{
		Name: "Készpénz", Type: "cash", BalanceCents: 50_000,
	})
	var wallet map[string]string
	decodeInto(t, body, &wallet)

	status, body := doJSON(t, ts, http.MethodPost, "/api/transactions", "u1", createTransactionRequest{
		CategoryID:  "cat-etel",
		WalletID:    wallet["id"],
		AmountCents: 12_000,
		Description: "Bevásárlás",
		Type:        "expense",
	})
	if status != http.StatusCreated {
		t.Fatalf("create transaction status = %d, body %s", status, body)
	}

	_, body = doJSON(t, ts, http.MethodGet, "/api/wallets", "u1", nil)
	var wallets []walletView
	decodeInto(t, body, &wallets)
	if wallets[0].BalanceCents != 38_000 {
		t.Errorf("wallet balance = %d, want 38000", wallets[0].BalanceCents)
	}
}

func TestCreateTransactionRejectsInvalidInput(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		req  createTransactionRequest
		want int
	}{
		{"zero amount", createTransactionRequest{AmountCents: 0, Type: "expense"}, http.StatusUnprocessableEntity},
		{"bad type", createTransactionRequest{AmountCents: 100, Type: "loan"}, http.StatusUnprocessableEntity},
		{"bad date", createTransactionRequest{AmountCents: 100, Type: "expense", Date: "2024-99-99"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, ts, http.MethodPost, "/api/transactions", "u1", tt.req)
			if status != tt.want {
				t.Errorf("status = %d, want %d, body %s", status, tt.want, body)
			}
		})
	}
}

func TestTransactionCannotTouchAnotherUsersWallet(t *testing.T) {
	_, ts := newTestServer(t)

	var wallet map[string]string
	_, body := doJSON(t, ts, http.MethodPost, "/api/wallets", "u1", walletRequest{
		Name: "Bankszámla", Type: "bank", BalanceCents: 10_000,
	})
	decodeInto(t, body, &wallet)

	// Another caller referencing the wallet id gets a 404, not a balance
	// change on someone else's wallet.
	status, _ := doJSON(t, ts, http.MethodPost, "/api/transactions", "u2", createTransactionRequest{
		CategoryID: "cat-etel", WalletID: wallet["id"], AmountCents: 9_999, Description: "x", Type: "expense",
	})
	if status != http.StatusNotFound {
		t.Fatalf("cross-user transaction status = %d, want 404", status)
	}

	_, body = doJSON(t, ts, http.MethodGet, "/api/wallets", "u1", nil)
	var wallets []walletView
	decodeInto(t, body, &wallets)
	if wallets[0].BalanceCents != 10_000 {
		t.Errorf("wallet balance = %d, want 10000 untouched", wallets[0].BalanceCents)
	}
}

func TestDeleteUnknownTransactionIsNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	status, _ := doJSON(t, ts, http.MethodDelete, "/api/transactions/nope", "u1", nil)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestRecurringRuleShowsUpOnDashboard(t *testing.T) {
	_, ts := newTestServer(t)

	today := time.Now().UTC().Format("2006-01-02")
	status, body := doJSON(t, ts, http.MethodPost, "/api/recurring-rules", "u1", createRuleRequest{
		CategoryID:  "cat-fizetes",
		AmountCents: 500_000,
		Description: "Fizetés",
		Type:        "income",
		Frequency:   "monthly",
		StartDate:   today,
	})
	if status != http.StatusCreated {
		t.Fatalf("create rule status = %d, body %s", status, body)
	}

	// The dashboard read triggers catch-up: today's occurrence materializes.
	status, body = doJSON(t, ts, http.MethodGet, "/api/dashboard", "u1", nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard status = %d, body %s", status, body)
	}
	var dash dashboardView
	decodeInto(t, body, &dash)
	if dash.MonthlyIncomeCents != 500_000 {
		t.Errorf("monthly income = %d, want 500000", dash.MonthlyIncomeCents)
	}
	if len(dash.RecentTransactions) != 1 {
		t.Fatalf("recent transactions = %d, want 1", len(dash.RecentTransactions))
	}
	if got := dash.RecentTransactions[0].Description; got != "Fizetés (Rendszeres)" {
		t.Errorf("materialized description = %q", got)
	}

	// The rule cursor moved one month ahead.
	_, body = doJSON(t, ts, http.MethodGet, "/api/recurring-rules", "u1", nil)
	var rules []recurringRuleView
	decodeInto(t, body, &rules)
	if len(rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(rules))
	}
	if rules[0].NextOccurrence == "" || rules[0].NextOccurrence == today {
		t.Errorf("next occurrence = %q, want a date after %s", rules[0].NextOccurrence, today)
	}
}

func TestDashboardCacheInvalidatedByWrites(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := doJSON(t, ts, http.MethodGet, "/api/dashboard", "u1", nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard status = %d", status)
	}
	var before dashboardView
	decodeInto(t, body, &before)
	if before.MonthlyExpensesCents != 0 {
		t.Fatalf("fresh user expenses = %d, want 0", before.MonthlyExpensesCents)
	}

	status, _ = doJSON(t, ts, http.MethodPost, "/api/transactions", "u1", createTransactionRequest{
		CategoryID: "cat-etel", AmountCents: 7_500, Description: "Kávé", Type: "expense",
	})
	if status != http.StatusCreated {
		t.Fatalf("create transaction status = %d", status)
	}

	_, body = doJSON(t, ts, http.MethodGet, "/api/dashboard", "u1", nil)
	var after dashboardView
	decodeInto(t, body, &after)
	if after.MonthlyExpensesCents != 7_500 {
		t.Errorf("expenses after write = %d, want 7500 (cache must be invalidated)", after.MonthlyExpensesCents)
	}
}

func TestTransferMovesMoneyWithoutTouchingReports(t *testing.T) {
	_, ts := newTestServer(t)

	var from, to map[string]string
	_, body := doJSON(t, ts, http.MethodPost, "/api/wallets", "u1", walletRequest{Name: "Bank", Type: "bank", BalanceCents: 80_000})
	decodeInto(t, body, &from)
	_, body = doJSON(t, ts, http.MethodPost, "/api/wallets", "u1", walletRequest{Name: "Cash", Type: "cash"})
	decodeInto(t, body, &to)

	status, body := doJSON(t, ts, http.MethodPost, "/api/transfers", "u1", createTransferRequest{
		FromWalletID: from["id"], ToWalletID: to["id"], AmountCents: 30_000,
	})
	if status != http.StatusCreated {
		t.Fatalf("transfer status = %d, body %s", status, body)
	}

	_, body = doJSON(t, ts, http.MethodGet, "/api/wallets", "u1", nil)
	var wallets []walletView
	decodeInto(t, body, &wallets)
	balances := map[string]int64{}
	for _, w := range wallets {
		balances[w.ID] = w.BalanceCents
	}
	if balances[from["id"]] != 50_000 || balances[to["id"]] != 30_000 {
		t.Errorf("balances = %v, want from=50000 to=30000", balances)
	}

	_, body = doJSON(t, ts, http.MethodGet, "/api/dashboard", "u1", nil)
	var dash dashboardView
	decodeInto(t, body, &dash)
	if dash.MonthlyExpensesCents != 0 || dash.TotalBalanceCents != 0 {
		t.Errorf("transfer leaked into reports: expenses=%d balance=%d",
			dash.MonthlyExpensesCents, dash.TotalBalanceCents)
	}

	status, _ = doJSON(t, ts, http.MethodPost, "/api/transfers", "u1", createTransferRequest{
		FromWalletID: from["id"], ToWalletID: from["id"], AmountCents: 1_000,
	})
	if status != http.StatusUnprocessableEntity {
		t.Errorf("same-wallet transfer status = %d, want 422", status)
	}
}

func TestSavingsAllocationCreditsGoal(t *testing.T) {
	_, ts := newTestServer(t)

	var wallet, goal map[string]string
	_, body := doJSON(t, ts, http.MethodPost, "/api/wallets", "u1", walletRequest{Name: "Bank", Type: "bank", BalanceCents: 200_000})
	decodeInto(t, body, &wallet)
	_, body = doJSON(t, ts, http.MethodPost, "/api/savings-goals", "u1", savingsGoalRequest{
		Name: "Nyaralás", TargetCents: 300_000,
	})
	decodeInto(t, body, &goal)

	status, body := doJSON(t, ts, http.MethodPost, "/api/savings-allocations", "u1", savingsAllocationRequest{
		WalletID: wallet["id"], GoalID: goal["id"], AmountCents: 40_000,
	})
	if status != http.StatusCreated {
		t.Fatalf("allocation status = %d, body %s", status, body)
	}

	_, body = doJSON(t, ts, http.MethodGet, "/api/savings-goals", "u1", nil)
	var goals []savingsGoalView
	decodeInto(t, body, &goals)
	if len(goals) != 1 || goals[0].CurrentCents != 40_000 {
		t.Fatalf("goals = %+v, want current 40000", goals)
	}

	status, _ = doJSON(t, ts, http.MethodPost, "/api/savings-allocations", "u1", savingsAllocationRequest{
		WalletID: wallet["id"], GoalID: "missing", AmountCents: 10_000,
	})
	if status != http.StatusNotFound {
		t.Errorf("allocation to unknown goal status = %d, want 404", status)
	}
}

func TestBudgetUpsertReplacesAmount(t *testing.T) {
	_, ts := newTestServer(t)

	now := time.Now()
	req := budgetRequest{
		CategoryID:  "cat-etel",
		AmountCents: 60_000,
		Month:       int(now.Month()),
		Year:        now.Year(),
	}
	if status, body := doJSON(t, ts, http.MethodPut, "/api/budgets", "u1", req); status != http.StatusOK {
		t.Fatalf("upsert status = %d, body %s", status, body)
	}
	req.AmountCents = 90_000
	if status, _ := doJSON(t, ts, http.MethodPut, "/api/budgets", "u1", req); status != http.StatusOK {
		t.Fatalf("second upsert failed")
	}

	path := fmt.Sprintf("/api/budgets?month=%d&year=%d", req.Month, req.Year)
	_, body := doJSON(t, ts, http.MethodGet, path, "u1", nil)
	var budgets []budgetView
	decodeInto(t, body, &budgets)
	if len(budgets) != 1 || budgets[0].AmountCents != 90_000 {
		t.Errorf("budgets = %+v, want one entry of 90000", budgets)
	}
}

func TestDeleteWalletWithTransactionsConflicts(t *testing.T) {
	_, ts := newTestServer(t)

	var wallet map[string]string
	_, body := doJSON(t, ts, http.MethodPost, "/api/wallets", "u1", walletRequest{Name: "Bank", Type: "bank"})
	decodeInto(t, body, &wallet)

	doJSON(t, ts, http.MethodPost, "/api/transactions", "u1", createTransactionRequest{
		CategoryID: "cat-etel", WalletID: wallet["id"], AmountCents: 500, Description: "x", Type: "expense",
	})

	status, _ := doJSON(t, ts, http.MethodDelete, "/api/wallets/"+wallet["id"], "u1", nil)
	if status != http.StatusConflict {
		t.Errorf("delete wallet status = %d, want 409", status)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/dashboard")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
