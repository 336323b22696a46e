// Package storage implements services.Store on SQLite. Wallet balance
// deltas and the recurrence cursor advance run inside SQL transactions so
// a crash can never leave the ledger and the balances disagreeing.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"kassza/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound aliases the core sentinel so callers can match it with
// errors.Is without importing this package.
var ErrNotFound = core.ErrNotFound

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- helpers ---

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(ns sql.NullString) (core.Date, error) {
	if !ns.Valid {
		return core.Date{}, nil
	}
	return core.ParseDate(ns.String)
}

// --- RuleStore ---

const ruleColumns = `id, user_id, category_id, amount_cents, description, type, frequency, start_date, end_date, next_occurrence, is_active`

func scanRule(row interface{ Scan(...any) error }) (core.RecurringRule, error) {
	var (
		rule                    core.RecurringRule
		categoryID              sql.NullString
		startDate               string
		endDate, nextOccurrence sql.NullString
	)
	err := row.Scan(&rule.ID, &rule.UserID, &categoryID, &rule.Amount.Cents, &rule.Description,
		&rule.Type, &rule.Frequency, &startDate, &endDate, &nextOccurrence, &rule.IsActive)
	if err != nil {
		return rule, err
	}
	rule.CategoryID = categoryID.String
	if rule.StartDate, err = core.ParseDate(startDate); err != nil {
		return rule, fmt.Errorf("rule %s start date: %w", rule.ID, err)
	}
	if rule.EndDate, err = parseNullDate(endDate); err != nil {
		return rule, fmt.Errorf("rule %s end date: %w", rule.ID, err)
	}
	if rule.NextOccurrence, err = parseNullDate(nextOccurrence); err != nil {
		return rule, fmt.Errorf("rule %s next occurrence: %w", rule.ID, err)
	}
	return rule, nil
}

func (r *SQLiteRepository) listRules(ctx context.Context, query string, args ...any) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListActiveRules(ctx context.Context, userID string) ([]core.RecurringRule, error) {
	return r.listRules(ctx,
		`SELECT `+ruleColumns+` FROM recurring_rules WHERE user_id = ? AND is_active = 1 ORDER BY id`,
		userID)
}

func (r *SQLiteRepository) ListRules(ctx context.Context, userID string) ([]core.RecurringRule, error) {
	return r.listRules(ctx,
		`SELECT `+ruleColumns+` FROM recurring_rules WHERE user_id = ? ORDER BY id`,
		userID)
}

// MaterializeOccurrence advances the rule cursor and inserts the occurrence
// in one SQL transaction. The UPDATE is a compare-and-swap on the cursor:
// zero rows affected means another catch-up got there first and nothing is
// written.
func (r *SQLiteRepository) MaterializeOccurrence(ctx context.Context, rule core.RecurringRule, tx core.Transaction, next core.Date) (string, bool, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	res, err := dbtx.ExecContext(ctx,
		`UPDATE recurring_rules
		 SET next_occurrence = ?
		 WHERE id = ? AND is_active = 1 AND COALESCE(next_occurrence, start_date) = ?`,
		next.String(), rule.ID, tx.Date.String())
	if err != nil {
		return "", false, fmt.Errorf("advance rule cursor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return "", false, nil
	}

	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now()
	if err := insertTransaction(ctx, dbtx, tx); err != nil {
		return "", false, fmt.Errorf("insert occurrence: %w", err)
	}

	if err := dbtx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit occurrence: %w", err)
	}
	return tx.ID, true, nil
}

func (r *SQLiteRepository) DeactivateRule(ctx context.Context, ruleID string, cursor core.Date) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_rules SET is_active = 0, next_occurrence = ? WHERE id = ?`,
		cursor.String(), ruleID)
	if err != nil {
		return fmt.Errorf("deactivate rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) InitializeCursor(ctx context.Context, ruleID string, cursor core.Date) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE recurring_rules SET next_occurrence = ? WHERE id = ? AND next_occurrence IS NULL`,
		cursor.String(), ruleID)
	if err != nil {
		return fmt.Errorf("initialize rule cursor: %w", err)
	}
	return nil
}

// --- RuleAdminStore ---

func (r *SQLiteRepository) CreateRule(ctx context.Context, rule core.RecurringRule) (string, error) {
	if err := rule.Validate(); err != nil {
		return "", err
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_rules (`+ruleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.UserID, nullString(rule.CategoryID), rule.Amount.Cents, rule.Description,
		rule.Type, rule.Frequency, rule.StartDate.String(), nullDate(rule.EndDate),
		nullDate(rule.NextOccurrence), rule.IsActive)
	if err != nil {
		return "", fmt.Errorf("insert rule: %w", err)
	}

	slog.InfoContext(ctx, "Recurring rule created",
		"id", rule.ID,
		"frequency", rule.Frequency,
		"start_date", rule.StartDate.String())
	return rule.ID, nil
}

func (r *SQLiteRepository) SetRuleActive(ctx context.Context, userID, ruleID string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_rules SET is_active = ? WHERE id = ? AND user_id = ?`,
		active, ruleID, userID)
	if err != nil {
		return fmt.Errorf("set rule active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteRule(ctx context.Context, userID, ruleID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recurring_rules WHERE id = ? AND user_id = ?`, ruleID, userID)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- TransactionStore ---

// insertTransaction writes the row and applies its wallet balance deltas
// inside the caller's SQL transaction.
func insertTransaction(ctx context.Context, dbtx *sql.Tx, tx core.Transaction) error {
	_, err := dbtx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, category_id, wallet_id, to_wallet_id, amount_cents, description, date, type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, nullString(tx.CategoryID), nullString(tx.WalletID), nullString(tx.ToWalletID),
		tx.Amount.Cents, tx.Description, tx.Date.String(), tx.Type, tx.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert transaction row: %w", err)
	}
	return applyBalance(ctx, dbtx, tx, 1)
}

// applyBalance shifts wallet balances for the transaction. sign -1 reverses
// the effect on delete.
func applyBalance(ctx context.Context, dbtx *sql.Tx, tx core.Transaction, sign int64) error {
	amount := tx.Amount.Cents * sign
	if tx.ToWalletID != "" {
		if err := adjustWallet(ctx, dbtx, tx.UserID, tx.WalletID, -amount); err != nil {
			return fmt.Errorf("debit source wallet: %w", err)
		}
		if err := adjustWallet(ctx, dbtx, tx.UserID, tx.ToWalletID, amount); err != nil {
			return fmt.Errorf("credit destination wallet: %w", err)
		}
		return nil
	}
	if tx.WalletID == "" {
		return nil
	}
	delta := amount
	if tx.Type == core.Expense {
		delta = -amount
	}
	if err := adjustWallet(ctx, dbtx, tx.UserID, tx.WalletID, delta); err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	return nil
}

// adjustWallet shifts one wallet balance inside the caller's SQL
// transaction. The update is scoped to the owning user, so a ledger row can
// never move money on another user's wallet; zero matched rows means the
// wallet id does not exist for this user and the caller rolls back.
func adjustWallet(ctx context.Context, dbtx *sql.Tx, userID, walletID string, delta int64) error {
	res, err := dbtx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + ? WHERE id = ? AND user_id = ?`,
		delta, walletID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("wallet %s: %w", walletID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	tx.ID = uuid.NewString()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	if err := insertTransaction(ctx, dbtx, tx); err != nil {
		return "", err
	}
	if err := dbtx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	return tx.ID, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	row := dbtx.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, wallet_id, to_wallet_id, amount_cents, description, date, type
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	tx, err := scanTransactionRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}

	if err := applyBalance(ctx, dbtx, tx, -1); err != nil {
		return err
	}
	if _, err := dbtx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction row: %w", err)
	}
	return dbtx.Commit()
}

func scanTransactionRow(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		tx                             core.Transaction
		categoryID, walletID, toWallet sql.NullString
		date                           string
	)
	err := row.Scan(&tx.ID, &tx.UserID, &categoryID, &walletID, &toWallet,
		&tx.Amount.Cents, &tx.Description, &date, &tx.Type)
	if err != nil {
		return tx, err
	}
	tx.CategoryID = categoryID.String
	tx.WalletID = walletID.String
	tx.ToWalletID = toWallet.String
	if tx.Date, err = core.ParseDate(date); err != nil {
		return tx, fmt.Errorf("transaction %s date: %w", tx.ID, err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, wallet_id, to_wallet_id, amount_cents, description, date, type, created_at
		 FROM transactions WHERE user_id = ? ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx                             core.Transaction
			categoryID, walletID, toWallet sql.NullString
			date, createdAt                string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &categoryID, &walletID, &toWallet,
			&tx.Amount.Cents, &tx.Description, &date, &tx.Type, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.CategoryID = categoryID.String
		tx.WalletID = walletID.String
		tx.ToWalletID = toWallet.String
		if tx.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %s date: %w", tx.ID, err)
		}
		if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("transaction %s created_at: %w", tx.ID, err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// GetTransaction loads one ledger entry by id regardless of owner. The sync
// worker uses it to resolve queued transaction ids.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, wallet_id, to_wallet_id, amount_cents, description, date, type
		 FROM transactions WHERE id = ?`, id)
	tx, err := scanTransactionRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tx, ErrNotFound
	}
	if err != nil {
		return tx, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// --- WalletStore ---

func (r *SQLiteRepository) ListWallets(ctx context.Context, userID string) ([]core.Wallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, balance_cents, currency, color
		 FROM wallets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	var out []core.Wallet
	for rows.Next() {
		var w core.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Type, &w.Balance.Cents, &w.Currency, &w.Color); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateWallet(ctx context.Context, w core.Wallet) (string, error) {
	if err := w.Validate(); err != nil {
		return "", err
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wallets (id, user_id, name, type, balance_cents, currency, color) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.Name, w.Type, w.Balance.Cents, w.Currency, w.Color)
	if err != nil {
		return "", fmt.Errorf("insert wallet: %w", err)
	}
	return w.ID, nil
}

func (r *SQLiteRepository) UpdateWallet(ctx context.Context, w core.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE wallets SET name = ?, type = ?, balance_cents = ?, currency = ?, color = ? WHERE id = ? AND user_id = ?`,
		w.Name, w.Type, w.Balance.Cents, w.Currency, w.Color, w.ID, w.UserID)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteWallet(ctx context.Context, userID, id string) error {
	var refs int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE wallet_id = ? OR to_wallet_id = ?`, id, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count wallet references: %w", err)
	}
	if refs > 0 {
		return core.ErrWalletInUse
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wallets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- CategoryStore ---

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	// Global categories carry an empty user id and are visible to everyone.
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, icon, color
		 FROM categories WHERE user_id = ? OR user_id = '' ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, type, icon, color) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Type, c.Icon, c.Color)
	if err != nil {
		return "", fmt.Errorf("insert category: %w", err)
	}
	return c.ID, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- BudgetStore ---

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string, month, year int) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_cents, month, year
		 FROM budgets WHERE user_id = ? AND month = ? AND year = ? ORDER BY category_id`,
		userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &b.Month, &b.Year); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category_id, amount_cents, month, year)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, category_id, month, year) DO UPDATE SET amount_cents = excluded.amount_cents`,
		b.ID, b.UserID, b.CategoryID, b.Amount.Cents, b.Month, b.Year)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

// --- SavingsStore ---

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_cents, current_cents, deadline, status, color
		 FROM savings_goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query savings goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		var (
			g        core.SavingsGoal
			deadline sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
			&deadline, &g.Status, &g.Color); err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		if g.Deadline, err = parseNullDate(deadline); err != nil {
			return nil, fmt.Errorf("goal %s deadline: %w", g.ID, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) (string, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (id, user_id, name, target_cents, current_cents, deadline, status, color)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		nullDate(g.Deadline), g.Status, g.Color)
	if err != nil {
		return "", fmt.Errorf("insert savings goal: %w", err)
	}
	return g.ID, nil
}

func (r *SQLiteRepository) AddToGoal(ctx context.Context, userID, goalID string, delta core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals
		 SET current_cents = MAX(0, current_cents + ?),
		     status = CASE WHEN MAX(0, current_cents + ?) >= target_cents THEN 'completed' ELSE 'active' END
		 WHERE id = ? AND user_id = ?`,
		delta.Cents, delta.Cents, goalID, userID)
	if err != nil {
		return fmt.Errorf("add to savings goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- worker support ---

// ListUserIDsWithActiveRules returns the distinct owners of active rules.
// The background catch-up worker iterates them.
func (r *SQLiteRepository) ListUserIDsWithActiveRules(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM recurring_rules WHERE is_active = 1`)
	if err != nil {
		return nil, fmt.Errorf("query rule owners: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan rule owner: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
