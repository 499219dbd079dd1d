package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// Balances is the per-category day counts carried on an employees row.
type Balances struct {
	Vacation int
	Sick     int
	Personal int
}

//go:generate mockgen -source=ledger_repo.go -destination=mock/ledger_repo_mock.go -package=mock

// Repository is the leave balance ledger. Deltas are applied as a single SQL
// increment so concurrent submissions never lose updates, and the write can
// join the caller's transaction via WithTx so a request transition and its
// balance effect commit or roll back together.
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// ApplyDelta adds delta (which may be negative) to the employee's balance
	// for the category and returns the resulting value. The adjustment is
	// unconditional: callers may warn about over-draw but must not clamp.
	ApplyDelta(ctx context.Context, employeeID string, category Category, delta int) (int, error)
	// ResetToMaximum overwrites the balance for the category, used only by the
	// annual reset engine. Safe to repeat.
	ResetToMaximum(ctx context.Context, employeeID string, category Category, maxDays int) error
	Balances(ctx context.Context, employeeID string) (Balances, error)
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) ApplyDelta(ctx context.Context, employeeID string, category Category, delta int) (int, error) {
	col, ok := BalanceColumn(category)
	if !ok {
		return 0, fmt.Errorf("category %q has no backing balance", category)
	}

	// col comes from the static mapping, never from input
	query := fmt.Sprintf(`
UPDATE employees
SET %s = %s + $2, updated_at = NOW()
WHERE id = $1
RETURNING %s
`, col, col, col)

	var newBalance int
	if err := r.queryer().QueryRowContext(ctx, query, employeeID, delta).Scan(&newBalance); err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (r *repository) ResetToMaximum(ctx context.Context, employeeID string, category Category, maxDays int) error {
	col, ok := BalanceColumn(category)
	if !ok {
		// personal balance is resettable even though requests never consume it
		if category != CategoryUnpaid {
			return fmt.Errorf("category %q has no backing balance", category)
		}
		col = "personal_balance"
	}

	query := fmt.Sprintf(`
UPDATE employees
SET %s = $2, updated_at = NOW()
WHERE id = $1
`, col)

	_, err := r.queryer().ExecContext(ctx, query, employeeID, maxDays)
	return err
}

func (r *repository) Balances(ctx context.Context, employeeID string) (Balances, error) {
	query := `
SELECT vacation_balance, sick_balance, personal_balance
FROM employees
WHERE id = $1 AND deleted_at IS NULL
`

	var b Balances
	err := r.queryer().QueryRowContext(ctx, query, employeeID).Scan(&b.Vacation, &b.Sick, &b.Personal)
	return b, err
}

func (r *repository) queryer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
