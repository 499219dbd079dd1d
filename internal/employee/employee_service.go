package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	employeeerrors "go-timeoff/internal/employee/errors"
	"go-timeoff/internal/ledger"
	"go-timeoff/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const BalanceSummaryKeyPrefix = "timeoff:balance-summary:"

// BalanceSummaryKey is the redis key caching one employee's summary. The
// change-event consumer deletes it whenever a request row changes.
func BalanceSummaryKey(employeeID string) string {
	return BalanceSummaryKeyPrefix + employeeID
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error)
	GetTeam(ctx context.Context, companyID, managerEmail string) ([]EmployeeResponse, error)
	OrgChart(ctx context.Context, companyID string) ([]*OrgNode, error)
	BalanceSummary(ctx context.Context, companyID, employeeID string) (BalanceSummaryResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	ledger ledger.Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, ledgerRepo ledger.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		ledger: ledgerRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("email", req.Email),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidCompanyID
	}
	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		s.logger.Warn("create employee invalid hire_date",
			zap.String("hire_date", req.HireDate),
			zap.Error(err),
		)
		return EmployeeResponse{}, employeeerrors.ErrInvalidHireDate
	}
	if req.ManagerEmail != nil && *req.ManagerEmail == req.Email {
		return EmployeeResponse{}, employeeerrors.ErrSelfManager
	}

	e := &Employee{
		ID:              uuid.New(),
		CompanyID:       companyUUID,
		FullName:        req.FullName,
		Email:           req.Email,
		ManagerEmail:    req.ManagerEmail,
		Department:      req.Department,
		Position:        req.Position,
		HireDate:        hireDate,
		VacationBalance: req.VacationBalance,
		SickBalance:     req.SickBalance,
		PersonalBalance: req.PersonalBalance,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		if isUniqueEmailViolation(err) {
			return EmployeeResponse{}, employeeerrors.ErrDuplicateEmail
		}
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", e.ID.String()),
	)
	return mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(employees), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error) {
	e, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) GetTeam(ctx context.Context, companyID, managerEmail string) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindByManagerEmail(ctx, companyID, managerEmail)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(employees), nil
}

func (s *service) OrgChart(ctx context.Context, companyID string) ([]*OrgNode, error) {
	employees, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	tree, err := BuildOrgChart(employees)
	if err != nil {
		s.logger.Warn("org chart build failed",
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return nil, err
	}
	return tree, nil
}

func (s *service) BalanceSummary(ctx context.Context, companyID, employeeID string) (BalanceSummaryResponse, error) {
	cacheKey := BalanceSummaryKey(employeeID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp BalanceSummaryResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Change events trigger bursts of refetches; collapse them.
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		balances, err := s.ledger.Balances(ctx, employeeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return BalanceSummaryResponse{}, employeeerrors.ErrEmployeeNotFound
			}
			return BalanceSummaryResponse{}, err
		}
		pending, err := s.repo.CountPendingRequests(ctx, companyID, employeeID)
		if err != nil {
			return BalanceSummaryResponse{}, err
		}

		resp := BalanceSummaryResponse{
			EmployeeID:      employeeID,
			VacationBalance: balances.Vacation,
			SickBalance:     balances.Sick,
			PersonalBalance: balances.Personal,
			PendingRequests: int(pending),
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, 10*time.Minute)
			}
		}
		return resp, nil
	})
	if err != nil {
		return BalanceSummaryResponse{}, err
	}
	return v.(BalanceSummaryResponse), nil
}

func isUniqueEmailViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key value")
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:              e.ID.String(),
		CompanyID:       e.CompanyID.String(),
		FullName:        e.FullName,
		Email:           e.Email,
		ManagerEmail:    e.ManagerEmail,
		Department:      e.Department,
		Position:        e.Position,
		HireDate:        e.HireDate.Format("2006-01-02"),
		VacationBalance: e.VacationBalance,
		SickBalance:     e.SickBalance,
		PersonalBalance: e.PersonalBalance,
	}
}

func mapToListResponse(employees []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp
}
