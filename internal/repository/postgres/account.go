package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	"github.com/pratik-mahalle/tasknest/internal/pkg/metrics"
)

const accountColumns = `id, tier, subscription_status, subscription_start_date, subscription_end_date,
	payment_reference, daily_usage_count, daily_usage_reset_at, monthly_usage_count,
	monthly_usage_reset_at, frozen_credits, restored_credits, created_at, updated_at`

// AccountRepository implements account.Repository
type AccountRepository struct {
	db  *DB
	now func() time.Time
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db, now: time.Now}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(s rowScanner) (*account.Account, error) {
	var a account.Account
	var tier, status string
	var start, end, monthlyResetAt sql.NullInt64
	var dailyResetAt, createdAt, updatedAt int64

	err := s.Scan(
		&a.ID, &tier, &status, &start, &end,
		&a.PaymentReference, &a.DailyUsageCount, &dailyResetAt, &a.MonthlyUsageCount,
		&monthlyResetAt, &a.FrozenCredits, &a.RestoredCredits, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Tier = account.Tier(tier)
	a.SubscriptionStatus = account.SubscriptionStatus(status)
	a.SubscriptionStartDate = fromNullUnix(start)
	a.SubscriptionEndDate = fromNullUnix(end)
	a.DailyUsageResetAt = fromUnix(dailyResetAt)
	a.MonthlyUsageResetAt = fromNullUnix(monthlyResetAt)
	a.CreatedAt = fromUnix(createdAt)
	a.UpdatedAt = fromUnix(updatedAt)

	return &a, nil
}

func fromUnix(v int64) time.Time {
	return time.Unix(v, 0).UTC()
}

func fromNullUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromUnix(v.Int64)
	return &t
}

func nullUnix(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func (r *AccountRepository) observe(op string, start time.Time) {
	metrics.RecordDBQuery(op, "accounts", time.Since(start))
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	defer r.observe("insert", time.Now())

	now := r.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = a.CreatedAt
	if a.DailyUsageResetAt.IsZero() {
		a.DailyUsageResetAt = a.CreatedAt
	}
	if a.SubscriptionStatus == "" {
		a.SubscriptionStatus = account.SubscriptionNone
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		a.ID, string(a.Tier), string(a.SubscriptionStatus),
		nullUnix(a.SubscriptionStartDate), nullUnix(a.SubscriptionEndDate),
		a.PaymentReference, a.DailyUsageCount, a.DailyUsageResetAt.Unix(), a.MonthlyUsageCount,
		nullUnix(a.MonthlyUsageResetAt), a.FrozenCredits, a.RestoredCredits,
		a.CreatedAt.Unix(), a.UpdatedAt.Unix(),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create account", err)
	}

	return nil
}

// Get retrieves an account by ID
func (r *AccountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	defer r.observe("select", time.Now())

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	a, err := scanAccount(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
	if err == sql.ErrNoRows {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get account", err)
	}

	return a, nil
}

// Increment adds one to the selected counter and returns the new value.
// The first monthly increment of an account stamps monthly_usage_reset_at.
func (r *AccountRepository) Increment(ctx context.Context, id string, kind account.UsageKind) (int, error) {
	defer r.observe("increment", time.Now())

	now := r.now().Unix()

	var query string
	var args []interface{}
	switch kind {
	case account.UsageDaily:
		query = `
			UPDATE accounts SET daily_usage_count = daily_usage_count + 1, updated_at = ?
			WHERE id = ?
			RETURNING daily_usage_count
		`
		args = []interface{}{now, id}
	case account.UsageMonthly:
		query = `
			UPDATE accounts
			SET monthly_usage_count = monthly_usage_count + 1,
				monthly_usage_reset_at = COALESCE(monthly_usage_reset_at, ?),
				updated_at = ?
			WHERE id = ?
			RETURNING monthly_usage_count
		`
		args = []interface{}{now, now, id}
	default:
		return 0, errors.BadRequest(fmt.Sprintf("unknown usage kind %q", kind))
	}

	var value int
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), args...).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, account.ErrNotFound
	}
	if err != nil {
		return 0, errors.DatabaseError("Failed to increment usage", err)
	}

	return value, nil
}

// ResetDaily zeroes the daily counter and stamps the reset time
func (r *AccountRepository) ResetDaily(ctx context.Context, id string, at time.Time) error {
	defer r.observe("reset_daily", time.Now())

	query := `
		UPDATE accounts SET daily_usage_count = 0, daily_usage_reset_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), at.Unix(), r.now().Unix(), id)
	if err != nil {
		return errors.DatabaseError("Failed to reset daily usage", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return account.ErrNotFound
	}

	return nil
}

// ResetDailyIfDue resets the daily counter only when the last reset happened
// at or before cutoff. It reports whether a reset took place.
func (r *AccountRepository) ResetDailyIfDue(ctx context.Context, id string, at, cutoff time.Time) (bool, error) {
	defer r.observe("reset_daily", time.Now())

	query := `
		UPDATE accounts SET daily_usage_count = 0, daily_usage_reset_at = ?, updated_at = ?
		WHERE id = ? AND daily_usage_reset_at <= ?
	`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), at.Unix(), r.now().Unix(), id, cutoff.Unix())
	if err != nil {
		return false, errors.DatabaseError("Failed to reset daily usage", err)
	}

	return r.affectedOrMissing(ctx, result, id)
}

// ResetMonthly zeroes the monthly counter unless it was already reset during
// at's calendar month. It reports whether a reset took place.
func (r *AccountRepository) ResetMonthly(ctx context.Context, id string, at time.Time) (bool, error) {
	defer r.observe("reset_monthly", time.Now())

	query := `
		UPDATE accounts SET monthly_usage_count = 0, monthly_usage_reset_at = ?, updated_at = ?
		WHERE id = ? AND (monthly_usage_reset_at IS NULL OR monthly_usage_reset_at < ?)
	`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		at.Unix(), r.now().Unix(), id, account.StartOfMonth(at).Unix(),
	)
	if err != nil {
		return false, errors.DatabaseError("Failed to reset monthly usage", err)
	}

	return r.affectedOrMissing(ctx, result, id)
}

func (r *AccountRepository) affectedOrMissing(ctx context.Context, result sql.Result, id string) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows > 0 {
		return true, nil
	}
	exists, err := r.exists(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, account.ErrNotFound
	}
	return false, nil
}

func (r *AccountRepository) exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT 1 FROM accounts WHERE id = ?`), id).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.DatabaseError("Failed to check account", err)
	}
	return true, nil
}

// Update applies a patch in a single statement and returns the stored result
func (r *AccountRepository) Update(ctx context.Context, id string, p account.Patch) (*account.Account, error) {
	defer r.observe("update", time.Now())

	sets, args := patchClauses(p)
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now().Unix())

	where := "id = ?"
	args = append(args, id)
	if p.RequireTier != nil {
		where += " AND tier = ?"
		args = append(args, string(*p.RequireTier))
	}

	query := `UPDATE accounts SET ` + strings.Join(sets, ", ") +
		` WHERE ` + where + ` RETURNING ` + accountColumns

	a, err := scanAccount(r.db.QueryRowContext(ctx, r.db.Rebind(query), args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		exists, existsErr := r.exists(ctx, id)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			return nil, account.ErrStateChanged
		}
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to update account", err)
	}

	return a, nil
}

func patchClauses(p account.Patch) ([]string, []interface{}) {
	var sets []string
	var args []interface{}
	add := func(clause string, values ...interface{}) {
		sets = append(sets, clause)
		args = append(args, values...)
	}

	if p.Tier != nil {
		add("tier = ?", string(*p.Tier))
	}

	if p.ClearSubscription {
		add("subscription_status = ?", string(account.SubscriptionNone))
		add("subscription_start_date = NULL")
		add("subscription_end_date = NULL")
		add("payment_reference = ?", "")
	} else {
		if p.SubscriptionStatus != nil {
			add("subscription_status = ?", string(*p.SubscriptionStatus))
		}
		if p.SubscriptionStartDate != nil {
			add("subscription_start_date = ?", p.SubscriptionStartDate.Unix())
		}
		if p.SubscriptionEndDate != nil {
			add("subscription_end_date = ?", p.SubscriptionEndDate.Unix())
		}
		if p.PaymentReference != nil {
			add("payment_reference = ?", *p.PaymentReference)
		}
	}

	switch {
	case p.DailyUsageCount != nil:
		add("daily_usage_count = ?", *p.DailyUsageCount)
	case p.CapDailyUsage != nil:
		add("daily_usage_count = CASE WHEN daily_usage_count > ? THEN ? ELSE daily_usage_count END",
			*p.CapDailyUsage, *p.CapDailyUsage)
	}
	if p.DailyUsageResetAt != nil {
		add("daily_usage_reset_at = ?", p.DailyUsageResetAt.Unix())
	}
	if p.MonthlyUsageCount != nil {
		add("monthly_usage_count = ?", *p.MonthlyUsageCount)
	}
	if p.MonthlyUsageResetAt != nil {
		add("monthly_usage_reset_at = ?", p.MonthlyUsageResetAt.Unix())
	}

	// Right-hand sides read the pre-update row
	switch {
	case p.RestoreFrozen:
		add("restored_credits = frozen_credits")
		add("frozen_credits = 0")
		return sets, args
	case p.FreezeUnused != nil:
		f := p.FreezeUnused
		add(`frozen_credits = CASE
			WHEN monthly_usage_reset_at IS NOT NULL AND monthly_usage_reset_at >= ? THEN
				CASE WHEN ? > monthly_usage_count
					THEN ? - monthly_usage_count ELSE 0 END
			ELSE ? END`,
			f.MonthStart.Unix(), f.Pool, f.Pool, f.Pool)
	case p.FrozenCredits != nil:
		add("frozen_credits = ?", *p.FrozenCredits)
	}
	if p.RestoredCredits != nil {
		add("restored_credits = ?", *p.RestoredCredits)
	}

	return sets, args
}

// List retrieves accounts with pagination
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*account.Account, int64, error) {
	defer r.observe("list", time.Now())

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count accounts", err)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC, id LIMIT ? OFFSET ?`

	accounts, err := r.query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

// ListFreeWithUsage returns stored free-tier accounts with a non-zero daily counter
func (r *AccountRepository) ListFreeWithUsage(ctx context.Context) ([]*account.Account, error) {
	defer r.observe("list", time.Now())

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tier = ? AND daily_usage_count > 0 ORDER BY id`
	return r.query(ctx, query, string(account.TierFree))
}

// ListExpired returns paid-tier accounts whose subscription ended at or before now
func (r *AccountRepository) ListExpired(ctx context.Context, now time.Time) ([]*account.Account, error) {
	defer r.observe("list", time.Now())

	query := `
		SELECT ` + accountColumns + ` FROM accounts
		WHERE tier <> ? AND subscription_end_date IS NOT NULL AND subscription_end_date <= ?
		ORDER BY subscription_end_date
	`
	return r.query(ctx, query, string(account.TierFree), now.Unix())
}

func (r *AccountRepository) query(ctx context.Context, query string, args ...interface{}) ([]*account.Account, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list accounts", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan account", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate accounts", err)
	}

	return accounts, nil
}

var _ account.Repository = (*AccountRepository)(nil)
