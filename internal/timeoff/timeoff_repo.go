package timeoff

import (
	"context"
	"database/sql"
	"time"

	"go-timeoff/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=timeoff_repo.go -destination=mock/timeoff_repo_mock.go -package=mock

// Repository persists requests and their history. Reads go through gorm;
// everything a transition writes goes through the caller's transaction so a
// status change, its ledger delta and its history line commit together.
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, r *Request) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Request, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Request, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Request, error)
	// FindByIDForUpdate locks the request row for the duration of the
	// transaction, serializing concurrent transitions on the same request.
	FindByIDForUpdate(ctx context.Context, companyID, id string) (*Request, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateSchedule(ctx context.Context, id string, start, end time.Time, totalDays int, status string) error

	InsertHistory(ctx context.Context, h *HistoryEntry) error
	ListHistory(ctx context.Context, requestID string) ([]HistoryEntry, error)
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

func (r *repository) Create(ctx context.Context, req *Request) error {
	query := `
INSERT INTO time_off_requests (
	id, company_id, employee_id, category, start_date, end_date,
	total_days, reason, status, requested_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err := r.execer().ExecContext(ctx, query,
		req.ID, req.CompanyID, req.EmployeeID, req.Category,
		req.StartDate, req.EndDate, req.TotalDays, req.Reason,
		req.Status, req.RequestedAt,
	)
	return err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Request, error) {
	var requests []Request
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("requested_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Request, error) {
	var requests []Request
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("requested_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*Request, error) {
	query := `
SELECT id, company_id, employee_id, category, start_date, end_date,
	total_days, reason, status, requested_at
FROM time_off_requests
WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
FOR UPDATE
`

	var req Request
	err := r.execer().QueryRowContext(ctx, query, id, companyID).Scan(
		&req.ID, &req.CompanyID, &req.EmployeeID, &req.Category,
		&req.StartDate, &req.EndDate, &req.TotalDays, &req.Reason,
		&req.Status, &req.RequestedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
UPDATE time_off_requests
SET status = $2, updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, status)
	return err
}

func (r *repository) UpdateSchedule(ctx context.Context, id string, start, end time.Time, totalDays int, status string) error {
	query := `
UPDATE time_off_requests
SET start_date = $2, end_date = $3, total_days = $4, status = $5, updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, start, end, totalDays, status)
	return err
}

func (r *repository) InsertHistory(ctx context.Context, h *HistoryEntry) error {
	query := `
INSERT INTO time_off_request_history (id, request_id, action, timestamp)
VALUES ($1, $2, $3, $4)
`
	_, err := r.execer().ExecContext(ctx, query, h.ID, h.RequestID, h.Action, h.Timestamp)
	return err
}

func (r *repository) ListHistory(ctx context.Context, requestID string) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db.ConnPool.(*sql.DB)
}
