package employee

import (
	"context"
	"database/sql"

	"go-timeoff/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error)
	FindByEmailAndCompany(ctx context.Context, companyID, email string) (*Employee, error)
	FindByManagerEmail(ctx context.Context, companyID, managerEmail string) ([]Employee, error)
	CountPendingRequests(ctx context.Context, companyID, employeeID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindByEmailAndCompany(ctx context.Context, companyID, email string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&e, "email = ?", email).Error
	return &e, err
}

func (r *repository) FindByManagerEmail(ctx context.Context, companyID, managerEmail string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("manager_email = ?", managerEmail).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) CountPendingRequests(ctx context.Context, companyID, employeeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("time_off_requests").
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status = ?", "Pending").
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}
