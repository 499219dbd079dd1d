package policy

import (
	"context"
	"database/sql"
	"time"

	"go-timeoff/internal/calendar"
	"go-timeoff/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=policy_repo.go -destination=mock/policy_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	GetPolicy(ctx context.Context, companyID string) (*TimeOffPolicy, error)
	UpsertWeekends(ctx context.Context, companyID string, weekends calendar.WeekendDefinition) error
	UpsertResetPolicy(ctx context.Context, p *TimeOffPolicy) error
	// ClaimResetYear conditionally advances last_reset_year to year. It
	// returns false when the year was already claimed; run inside the reset
	// transaction it doubles as the lock that serializes concurrent runs.
	ClaimResetYear(ctx context.Context, companyID string, year int) (bool, error)
	ListHolidays(ctx context.Context, companyID string) ([]Holiday, error)
	HolidayDates(ctx context.Context, companyID string) ([]time.Time, error)
	AddHoliday(ctx context.Context, h *Holiday) error
	DeleteHoliday(ctx context.Context, companyID, id string) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) GetPolicy(ctx context.Context, companyID string) (*TimeOffPolicy, error) {
	var p TimeOffPolicy
	err := r.db.WithContext(ctx).
		First(&p, "company_id = ?", companyID).Error
	return &p, err
}

func (r *repository) UpsertWeekends(ctx context.Context, companyID string, weekends calendar.WeekendDefinition) error {
	p := TimeOffPolicy{Weekends: weekends}
	return r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Assign(map[string]any{"weekends": weekends}).
		FirstOrCreate(&p, "company_id = ?", companyID).Error
}

func (r *repository) UpsertResetPolicy(ctx context.Context, p *TimeOffPolicy) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "company_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"reset_month", "reset_day",
				"vacation_max", "sick_max", "personal_max",
				"reset_vacation", "reset_sick", "reset_personal",
				"updated_at",
			}),
		}).
		Create(p).Error
}

func (r *repository) ClaimResetYear(ctx context.Context, companyID string, year int) (bool, error) {
	// Strictly-greater so a run for an older year can never move the
	// watermark backwards.
	query := `
UPDATE time_off_policies
SET last_reset_year = $2, updated_at = NOW()
WHERE company_id = $1
  AND (last_reset_year IS NULL OR last_reset_year < $2)
`

	var (
		res sql.Result
		err error
	)
	if r.tx != nil {
		res, err = r.tx.ExecContext(ctx, query, companyID, year)
	} else {
		res, err = r.db.WithContext(ctx).ConnPool.ExecContext(ctx, query, companyID, year)
	}
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) ListHolidays(ctx context.Context, companyID string) ([]Holiday, error) {
	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *repository) HolidayDates(ctx context.Context, companyID string) ([]time.Time, error) {
	holidays, err := r.ListHolidays(ctx, companyID)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(holidays))
	for i, h := range holidays {
		dates[i] = h.Date
	}
	return dates, nil
}

func (r *repository) AddHoliday(ctx context.Context, h *Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) DeleteHoliday(ctx context.Context, companyID, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Holiday{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
