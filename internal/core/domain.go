package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	WalletBank    WalletType = "bank"
	WalletCash    WalletType = "cash"
	WalletSavings WalletType = "savings"
	WalletCredit  WalletType = "credit"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

// AutoDescriptionSuffix is appended to the rule description on every
// materialized transaction so users can tell them from hand-entered ones.
const AutoDescriptionSuffix = " (Rendszeres)"

const maxDescriptionLen = 200

// Rule descriptions leave room for the suffix so every materialized
// transaction still passes Transaction.Validate.
const maxRuleDescriptionLen = maxDescriptionLen - len(AutoDescriptionSuffix)

type (
	TransactionType string

	Frequency string

	WalletType string

	GoalStatus string

	// Date is a calendar day with no time-of-day component.
	// All comparisons in the recurrence engine are by calendar day.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Wallet struct {
		ID       string
		UserID   string
		Name     string
		Type     WalletType
		Balance  Money
		Currency string
		Color    string
	}

	Category struct {
		ID     string
		UserID string
		Name   string
		Type   TransactionType
		Icon   string
		Color  string
	}

	// Budget is a monthly spending limit for one category.
	// One budget per (user, category, month, year).
	Budget struct {
		ID         string
		UserID     string
		CategoryID string
		Amount     Money
		Month      int // 1-12
		Year       int
	}

	SavingsGoal struct {
		ID            string
		UserID        string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		Deadline      Date // optional, zero when unset
		Status        GoalStatus
		Color         string
	}

	// Transaction is one concrete ledger entry, either user-entered or
	// materialized from a RecurringRule. CategoryID is empty for system
	// movements (transfers, savings allocations) which are excluded from
	// category reporting. WalletID/ToWalletID drive balance effects.
	Transaction struct {
		ID          string
		UserID      string
		CategoryID  string
		WalletID    string
		ToWalletID  string
		Amount      Money
		Description string
		Date        Date
		Type        TransactionType
		CreatedAt   time.Time
	}

	// RecurringRule is a user-owned template for periodic money movement.
	// NextOccurrence is the date of the next occurrence not yet
	// materialized; the zero Date means "start at StartDate".
	RecurringRule struct {
		ID             string
		UserID         string
		CategoryID     string
		Amount         Money
		Description    string
		Type           TransactionType
		Frequency      Frequency
		StartDate      Date
		EndDate        Date // optional, inclusive; zero when unset
		NextOccurrence Date
		IsActive       bool
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrWalletInUse      = errors.New("wallet has transactions")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
)

// NewDate creates a Date at UTC midnight for the given calendar day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int (1-12)
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// Equal reports whether two dates are the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyName
	}
	switch w.Type {
	case WalletBank, WalletCash, WalletSavings, WalletCredit:
	default:
		return errors.New("invalid wallet type")
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID == "" {
		return errors.New("budget requires a category")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Month < 1 || b.Month > 12 {
		return errors.New("invalid month")
	}
	if b.Year < 1 {
		return errors.New("invalid year")
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if len(t.Description) > maxDescriptionLen {
		return errors.New("description too long (max 200 characters)")
	}
	if t.ToWalletID != "" && t.WalletID == "" {
		return errors.New("transfer requires a source wallet")
	}
	if t.ToWalletID != "" && t.ToWalletID == t.WalletID {
		return errors.New("transfer wallets must differ")
	}
	return nil
}

// IsSystemMovement reports whether the transaction is an internal money
// movement (transfer or savings allocation) that category reports must skip.
func (t Transaction) IsSystemMovement() bool {
	return t.CategoryID == ""
}

func (r RecurringRule) Validate() error {
	if err := r.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return errors.New("end date must not precede start date")
	}
	if err := r.Frequency.Validate(); err != nil {
		return err
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > maxRuleDescriptionLen {
		return fmt.Errorf("description too long (max %d characters)", maxRuleDescriptionLen)
	}
	return r.Amount.Validate()
}

// Cursor returns the date the catch-up loop starts from: NextOccurrence
// when set, otherwise the rule's start date.
func (r RecurringRule) Cursor() Date {
	if r.NextOccurrence.IsZero() {
		return r.StartDate
	}
	return r.NextOccurrence
}
