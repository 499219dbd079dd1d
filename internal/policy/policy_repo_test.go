package policy_test

import (
	"context"
	"testing"

	"go-timeoff/internal/policy"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRepository_ClaimResetYear(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	// The predicate is strictly-greater so last_reset_year only ever moves
	// forward, even if a run for a past year arrives after a newer claim.
	claimQuery := `(?s)UPDATE time_off_policies\s+SET last_reset_year = \$2.*` +
		`last_reset_year IS NULL OR last_reset_year < \$2`

	t.Run("claims an unclaimed year", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(claimQuery).
			WithArgs(companyID, 2026).
			WillReturnResult(sqlmock.NewResult(0, 1))

		tx, err := db.Begin()
		assert.NoError(t, err)

		claimed, err := policy.NewRepository(nil).WithTx(tx).ClaimResetYear(ctx, companyID, 2026)
		assert.NoError(t, err)
		assert.True(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale year matches no row", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(claimQuery).
			WithArgs(companyID, 2024).
			WillReturnResult(sqlmock.NewResult(0, 0))

		tx, err := db.Begin()
		assert.NoError(t, err)

		claimed, err := policy.NewRepository(nil).WithTx(tx).ClaimResetYear(ctx, companyID, 2024)
		assert.NoError(t, err)
		assert.False(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
