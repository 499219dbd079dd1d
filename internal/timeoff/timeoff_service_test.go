package timeoff_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-timeoff/internal/calendar"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/ledger"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/policy"
	"go-timeoff/internal/timeoff"
	timeofferrors "go-timeoff/internal/timeoff/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeTimeOffRepository struct {
	createFn            func(ctx context.Context, r *timeoff.Request) error
	findAllByCompanyFn  func(ctx context.Context, companyID string) ([]timeoff.Request, error)
	findAllByEmployeeFn func(ctx context.Context, companyID, employeeID string) ([]timeoff.Request, error)
	findByIDFn          func(ctx context.Context, companyID, id string) (*timeoff.Request, error)
	findForUpdateFn     func(ctx context.Context, companyID, id string) (*timeoff.Request, error)
	updateStatusFn      func(ctx context.Context, id, status string) error
	updateScheduleFn    func(ctx context.Context, id string, start, end time.Time, totalDays int, status string) error
	insertHistoryFn     func(ctx context.Context, h *timeoff.HistoryEntry) error
	listHistoryFn       func(ctx context.Context, requestID string) ([]timeoff.HistoryEntry, error)
}

func (f *fakeTimeOffRepository) WithTx(tx *sql.Tx) timeoff.Repository { return f }

func (f *fakeTimeOffRepository) Create(ctx context.Context, r *timeoff.Request) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeTimeOffRepository) FindAllByCompany(ctx context.Context, companyID string) ([]timeoff.Request, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeTimeOffRepository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]timeoff.Request, error) {
	if f.findAllByEmployeeFn != nil {
		return f.findAllByEmployeeFn(ctx, companyID, employeeID)
	}
	return nil, nil
}

func (f *fakeTimeOffRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*timeoff.Request, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTimeOffRepository) FindByIDForUpdate(ctx context.Context, companyID, id string) (*timeoff.Request, error) {
	if f.findForUpdateFn != nil {
		return f.findForUpdateFn(ctx, companyID, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTimeOffRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (f *fakeTimeOffRepository) UpdateSchedule(ctx context.Context, id string, start, end time.Time, totalDays int, status string) error {
	if f.updateScheduleFn != nil {
		return f.updateScheduleFn(ctx, id, start, end, totalDays, status)
	}
	return nil
}

func (f *fakeTimeOffRepository) InsertHistory(ctx context.Context, h *timeoff.HistoryEntry) error {
	if f.insertHistoryFn != nil {
		return f.insertHistoryFn(ctx, h)
	}
	return nil
}

func (f *fakeTimeOffRepository) ListHistory(ctx context.Context, requestID string) ([]timeoff.HistoryEntry, error) {
	if f.listHistoryFn != nil {
		return f.listHistoryFn(ctx, requestID)
	}
	return nil, nil
}

type fakeLedgerRepository struct {
	applyDeltaFn func(ctx context.Context, employeeID string, category ledger.Category, delta int) (int, error)
	resetFn      func(ctx context.Context, employeeID string, category ledger.Category, maxDays int) error
	balancesFn   func(ctx context.Context, employeeID string) (ledger.Balances, error)
}

func (f *fakeLedgerRepository) WithTx(tx *sql.Tx) ledger.Repository { return f }

func (f *fakeLedgerRepository) ApplyDelta(ctx context.Context, employeeID string, category ledger.Category, delta int) (int, error) {
	if f.applyDeltaFn != nil {
		return f.applyDeltaFn(ctx, employeeID, category, delta)
	}
	return 0, nil
}

func (f *fakeLedgerRepository) ResetToMaximum(ctx context.Context, employeeID string, category ledger.Category, maxDays int) error {
	if f.resetFn != nil {
		return f.resetFn(ctx, employeeID, category, maxDays)
	}
	return nil
}

func (f *fakeLedgerRepository) Balances(ctx context.Context, employeeID string) (ledger.Balances, error) {
	if f.balancesFn != nil {
		return f.balancesFn(ctx, employeeID)
	}
	return ledger.Balances{}, nil
}

type fakeEmployeeRepository struct {
	findByIDFn func(ctx context.Context, companyID, id string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeEmployeeRepository) Create(context.Context, *employee.Employee) error { return nil }

func (f *fakeEmployeeRepository) FindAllByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindByEmailAndCompany(ctx context.Context, companyID, email string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindByManagerEmail(ctx context.Context, companyID, managerEmail string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepository) CountPendingRequests(ctx context.Context, companyID, employeeID string) (int64, error) {
	return 0, nil
}

type fakePolicyRepository struct {
	getPolicyFn    func(ctx context.Context, companyID string) (*policy.TimeOffPolicy, error)
	holidayDatesFn func(ctx context.Context, companyID string) ([]time.Time, error)
}

func (f *fakePolicyRepository) WithTx(tx *sql.Tx) policy.Repository { return f }

func (f *fakePolicyRepository) GetPolicy(ctx context.Context, companyID string) (*policy.TimeOffPolicy, error) {
	if f.getPolicyFn != nil {
		return f.getPolicyFn(ctx, companyID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePolicyRepository) UpsertWeekends(context.Context, string, calendar.WeekendDefinition) error {
	return nil
}
func (f *fakePolicyRepository) UpsertResetPolicy(context.Context, *policy.TimeOffPolicy) error {
	return nil
}
func (f *fakePolicyRepository) ClaimResetYear(context.Context, string, int) (bool, error) {
	return false, nil
}
func (f *fakePolicyRepository) ListHolidays(context.Context, string) ([]policy.Holiday, error) {
	return nil, nil
}

func (f *fakePolicyRepository) HolidayDates(ctx context.Context, companyID string) ([]time.Time, error) {
	if f.holidayDatesFn != nil {
		return f.holidayDatesFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakePolicyRepository) AddHoliday(context.Context, *policy.Holiday) error { return nil }
func (f *fakePolicyRepository) DeleteHoliday(context.Context, string, string) (int64, error) {
	return 0, nil
}

type fakeOutboxRepository struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(context.Context, int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepository) MarkSent(context.Context, string) error { return nil }
func (f *fakeOutboxRepository) MarkFailed(context.Context, string, string) error { return nil }

type timeOffServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   timeoff.Service
	repo      *fakeTimeOffRepository
	ledger    *fakeLedgerRepository
	employees *fakeEmployeeRepository
	policies  *fakePolicyRepository
	outbox    *fakeOutboxRepository
}

func setupTimeOffServiceTest(t *testing.T) *timeOffServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeTimeOffRepository{}
	ledgerRepo := &fakeLedgerRepository{}
	employees := &fakeEmployeeRepository{}
	policies := &fakePolicyRepository{}
	outbox := &fakeOutboxRepository{}
	svc := timeoff.NewService(db, repo, ledgerRepo, employees, policies, outbox)

	return &timeOffServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		ledger:    ledgerRepo,
		employees: employees,
		policies:  policies,
		outbox:    outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func ownerEmployee(companyID, employeeID uuid.UUID, managerEmail string) *employee.Employee {
	e := &employee.Employee{
		ID:        employeeID,
		CompanyID: companyID,
		FullName:  "Dana Owner",
		Email:     "dana@acme.test",
	}
	if managerEmail != "" {
		e.ManagerEmail = &managerEmail
	}
	return e
}

func TestTimeOffService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	employeeID := uuid.New()
	actor := timeoff.Actor{EmployeeID: employeeID.String(), Email: "dana@acme.test", Role: "employee"}

	t.Run("vacation charges balance on submission", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.employees.findByIDFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			assert.Equal(t, companyID.String(), cid)
			return ownerEmployee(companyID, employeeID, "boss@acme.test"), nil
		}
		deps.ledger.applyDeltaFn = func(ctx context.Context, eid string, category ledger.Category, delta int) (int, error) {
			assert.Equal(t, employeeID.String(), eid)
			assert.Equal(t, ledger.CategoryVacation, category)
			assert.Equal(t, -5, delta)
			return 10, nil
		}
		var historyAction string
		deps.repo.insertHistoryFn = func(ctx context.Context, h *timeoff.HistoryEntry) error {
			historyAction = h.Action
			return nil
		}
		var queued kafka.OutboxEvent
		deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
			queued = event
			return nil
		}

		resp, err := deps.service.Create(ctx, companyID.String(), actor, timeoff.CreateTimeOffRequest{
			Category:  "Vacation",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
			Reason:    "spring break",
		})

		assert.NoError(t, err)
		assert.Equal(t, 5, resp.TotalDays)
		assert.Equal(t, timeoff.StatusPending, resp.Status)
		assert.NotNil(t, resp.NewBalance)
		assert.Equal(t, 10, *resp.NewBalance)
		assert.Equal(t, timeoff.ActionCreated, historyAction)
		assert.Equal(t, "time_off_request", queued.AggregateType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("weekend days are not charged", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.employees.findByIDFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return ownerEmployee(companyID, employeeID, ""), nil
		}
		var charged int
		deps.ledger.applyDeltaFn = func(ctx context.Context, eid string, category ledger.Category, delta int) (int, error) {
			charged = delta
			return 8, nil
		}

		// Monday through the following Wednesday spans two weekend days.
		resp, err := deps.service.Create(ctx, companyID.String(), actor, timeoff.CreateTimeOffRequest{
			Category:  "Sick Day",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-11",
		})

		assert.NoError(t, err)
		assert.Equal(t, 8, resp.TotalDays)
		assert.Equal(t, -8, charged)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("company holidays reduce the charge", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.employees.findByIDFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return ownerEmployee(companyID, employeeID, ""), nil
		}
		deps.policies.holidayDatesFn = func(ctx context.Context, cid string) ([]time.Time, error) {
			return []time.Time{time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)}, nil
		}
		var charged int
		deps.ledger.applyDeltaFn = func(ctx context.Context, eid string, category ledger.Category, delta int) (int, error) {
			charged = delta
			return 11, nil
		}

		resp, err := deps.service.Create(ctx, companyID.String(), actor, timeoff.CreateTimeOffRequest{
			Category:  "Vacation",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		assert.NoError(t, err)
		assert.Equal(t, 4, resp.TotalDays)
		assert.Equal(t, -4, charged)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unpaid leave never touches the ledger", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.employees.findByIDFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return ownerEmployee(companyID, employeeID, ""), nil
		}
		deps.ledger.applyDeltaFn = func(ctx context.Context, eid string, category ledger.Category, delta int) (int, error) {
			t.Fatal("ledger must not be touched for unpaid leave")
			return 0, nil
		}

		resp, err := deps.service.Create(ctx, companyID.String(), actor, timeoff.CreateTimeOffRequest{
			Category:  "Personal (Unpaid)",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		assert.NoError(t, err)
		assert.Equal(t, 5, resp.TotalDays)
		assert.Nil(t, resp.NewBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("overdraw is allowed and goes negative", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.employees.findByIDFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return ownerEmployee(companyID, employeeID, ""), nil
		}
		deps.ledger.applyDeltaFn = func(ctx context.Context, eid string, category ledger.Category, delta int) (int, error) {
			return -3, nil
		}

		resp, err := deps.service.Create(ctx, companyID.String(), actor, timeoff.CreateTimeOffRequest{
			Category:  "Vacation",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		assert.NoError(t, err)
		assert.Equal(t, -3, *resp.NewBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown category", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, companyID.String(), actor, timeoff.CreateTimeOffRequest{
			Category:  "Sabbatical",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrInvalidCategory)
	})

	t.Run("negative reversed range", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, companyID.String(), actor, timeoff.CreateTimeOffRequest{
			Category:  "Vacation",
			StartDate: "2026-03-06",
			EndDate:   "2026-03-02",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrInvalidDateRange)
	})

	t.Run("negative repo failure rolls back", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.employees.findByIDFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return ownerEmployee(companyID, employeeID, ""), nil
		}
		deps.repo.createFn = func(ctx context.Context, r *timeoff.Request) error {
			return errors.New("insert failed")
		}

		_, err := deps.service.Create(ctx, companyID.String(), actor, timeoff.CreateTimeOffRequest{
			Category:  "Vacation",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func pendingRequest(companyID, employeeID uuid.UUID, category string, totalDays int) *timeoff.Request {
	return &timeoff.Request{
		ID:          uuid.New(),
		CompanyID:   companyID,
		EmployeeID:  employeeID,
		Category:    category,
		StartDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
		TotalDays:   totalDays,
		Status:      timeoff.StatusPending,
		RequestedAt: time.Now().UTC(),
	}
}

func TestTimeOffService_ApproveDeny(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	employeeID := uuid.New()
	manager := timeoff.Actor{EmployeeID: uuid.New().String(), Email: "boss@acme.test", Role: "manager"}

	t.Run("approve keeps the balance as charged", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		request := pendingRequest(companyID, employeeID, "Vacation", 5)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findForUpdateFn = func(ctx context.Context, cid, id string) (*timeoff.Request, error) {
			return request, nil
		}
		deps.employees.findByIDFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return ownerEmployee(companyID, employeeID, "boss@acme.test"), nil
		}
		deps.ledger.applyDeltaFn = func(ctx context.Context, eid string, category ledger.Category, delta int) (int, error) {
			t.Fatal("approval must not touch the ledger")
			return 0, nil
		}
		var status string
		deps.repo.updateStatusFn = func(ctx context.Context, id, s string) error {
			status = s
			return nil
		}

		resp, err := deps.service.Approve(ctx, companyID.String(), manager, request.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, timeoff.StatusApproved, status)
		assert.Equal(t, timeoff.StatusApproved, resp.Status)
		assert.Nil(t, resp.NewBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("deny restores the stored day count", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		request := pendingRequest(companyID, employeeID, "Sick Day", 3)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findForUpdateFn = func(ctx context.Context, cid, id string) (*timeoff.Request, error) {
			return request, nil
		}
		deps.employees.findByIDFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return ownerEmployee(companyID, employeeID, "boss@acme.test"), nil
		}
		deps.ledger.applyDeltaFn = func(ctx context.Context, eid string, category ledger.Category, delta int) (int, error) {
			assert.Equal(t, employeeID.String(), eid)
			assert.Equal(t, ledger.CategorySick, category)
			assert.Equal(t, 3, delta)
			return 5, nil
		}

		resp, err := deps.service.Deny(ctx, companyID.String(), manager, request.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, timeoff.StatusDenied, resp.Status)
		assert.Equal(t, 5, *resp.NewBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative only the owner's manager may decide", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		request := pendingRequest(companyID, employeeID, "Vacation", 5)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findForUpdateFn = func(ctx context.Context, cid, id string) (*timeoff.Request, error) {
			return request, nil
		}
		deps.employees.findByIDFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return ownerEmployee(companyID, employeeID, "someone.else@acme.test"), nil
		}

		_, err := deps.service.Approve(ctx, companyID.String(), manager, request.ID.String())

		assert.ErrorIs(t, err, timeofferrors.ErrNotRequestManager)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative already decided request conflicts", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		request := pendingRequest(companyID, employeeID, "Vacation", 5)
		request.Status = timeoff.StatusDenied
		expectTx(t, deps.sqlMock, false)
		deps.repo.findForUpdateFn = func(ctx context.Context, cid, id string) (*timeoff.Request, error) {
			return request, nil
		}

		_, err := deps.service.Approve(ctx, companyID.String(), manager, request.ID.String())

		assert.ErrorIs(t, err, timeofferrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown request", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Deny(ctx, companyID.String(), manager, uuid.New().String())

		assert.ErrorIs(t, err, timeofferrors.ErrRequestNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestTimeOffService_Withdraw(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	employeeID := uuid.New()
	owner := timeoff.Actor{EmployeeID: employeeID.String(), Email: "dana@acme.test", Role: "employee"}

	t.Run("owner withdrawal restores the balance", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		request := pendingRequest(companyID, employeeID, "Vacation", 5)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findForUpdateFn = func(ctx context.Context, cid, id string) (*timeoff.Request, error) {
			return request, nil
		}
		deps.ledger.applyDeltaFn = func(ctx context.Context, eid string, category ledger.Category, delta int) (int, error) {
			assert.Equal(t, 5, delta)
			return 15, nil
		}
		var status string
		deps.repo.updateStatusFn = func(ctx context.Context, id, s string) error {
			status = s
			return nil
		}

		resp, err := deps.service.Withdraw(ctx, companyID.String(), owner, request.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, timeoff.StatusWithdrawn, status)
		assert.Equal(t, timeoff.StatusWithdrawn, resp.Status)
		assert.Equal(t, 15, *resp.NewBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative only the owner may withdraw", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		request := pendingRequest(companyID, employeeID, "Vacation", 5)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findForUpdateFn = func(ctx context.Context, cid, id string) (*timeoff.Request, error) {
			return request, nil
		}

		other := timeoff.Actor{EmployeeID: uuid.New().String(), Email: "other@acme.test"}
		_, err := deps.service.Withdraw(ctx, companyID.String(), other, request.ID.String())

		assert.ErrorIs(t, err, timeofferrors.ErrNotRequestOwner)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative approved request cannot be withdrawn", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		request := pendingRequest(companyID, employeeID, "Vacation", 5)
		request.Status = timeoff.StatusApproved
		expectTx(t, deps.sqlMock, false)
		deps.repo.findForUpdateFn = func(ctx context.Context, cid, id string) (*timeoff.Request, error) {
			return request, nil
		}

		_, err := deps.service.Withdraw(ctx, companyID.String(), owner, request.ID.String())

		assert.ErrorIs(t, err, timeofferrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestTimeOffService_Reschedule(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	employeeID := uuid.New()
	owner := timeoff.Actor{EmployeeID: employeeID.String(), Email: "dana@acme.test", Role: "employee"}

	approvedRequest := func() *timeoff.Request {
		request := pendingRequest(companyID, employeeID, "Vacation", 5)
		request.Status = timeoff.StatusApproved
		return request
	}

	t.Run("shrinking the range refunds the difference", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		request := approvedRequest()
		expectTx(t, deps.sqlMock, true)
		deps.repo.findForUpdateFn = func(ctx context.Context, cid, id string) (*timeoff.Request, error) {
			return request, nil
		}
		deps.ledger.applyDeltaFn = func(ctx context.Context, eid string, category ledger.Category, delta int) (int, error) {
			// 5 charged, new range is 3, so 2 come back.
			assert.Equal(t, 2, delta)
			return 12, nil
		}
		var newStatus string
		var newTotal int
		deps.repo.updateScheduleFn = func(ctx context.Context, id string, start, end time.Time, totalDays int, status string) error {
			newStatus = status
			newTotal = totalDays
			return nil
		}

		resp, err := deps.service.Reschedule(ctx, companyID.String(), owner, request.ID.String(), timeoff.RescheduleTimeOffRequest{
			StartDate: "2027-06-07",
			EndDate:   "2027-06-09",
		})

		assert.NoError(t, err)
		assert.Equal(t, timeoff.StatusPending, newStatus)
		assert.Equal(t, 3, newTotal)
		assert.Equal(t, timeoff.StatusPending, resp.Status)
		assert.Equal(t, 3, resp.TotalDays)
		assert.Equal(t, 12, *resp.NewBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative past start date", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Reschedule(ctx, companyID.String(), owner, uuid.New().String(), timeoff.RescheduleTimeOffRequest{
			StartDate: "2020-06-01",
			EndDate:   "2020-06-03",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrRescheduleNotFuture)
	})

	t.Run("negative pending request cannot be rescheduled", func(t *testing.T) {
		deps := setupTimeOffServiceTest(t)
		defer deps.db.Close()

		request := pendingRequest(companyID, employeeID, "Vacation", 5)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findForUpdateFn = func(ctx context.Context, cid, id string) (*timeoff.Request, error) {
			return request, nil
		}

		_, err := deps.service.Reschedule(ctx, companyID.String(), owner, request.ID.String(), timeoff.RescheduleTimeOffRequest{
			StartDate: "2027-06-07",
			EndDate:   "2027-06-09",
		})

		assert.ErrorIs(t, err, timeofferrors.ErrInvalidStatusTransition)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

// The charge at submission and the restore at denial or withdrawal cancel
// exactly, even when the calendar would price the range differently today.
func TestTimeOffService_ChargeRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	employeeID := uuid.New()
	owner := timeoff.Actor{EmployeeID: employeeID.String(), Email: "dana@acme.test", Role: "employee"}

	deps := setupTimeOffServiceTest(t)
	defer deps.db.Close()

	balance := 15
	deps.employees.findByIDFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
		return ownerEmployee(companyID, employeeID, ""), nil
	}
	deps.ledger.applyDeltaFn = func(ctx context.Context, eid string, category ledger.Category, delta int) (int, error) {
		balance += delta
		return balance, nil
	}

	var created *timeoff.Request
	deps.repo.createFn = func(ctx context.Context, r *timeoff.Request) error {
		created = r
		return nil
	}

	expectTx(t, deps.sqlMock, true)
	_, err := deps.service.Create(ctx, companyID.String(), owner, timeoff.CreateTimeOffRequest{
		Category:  "Vacation",
		StartDate: "2026-03-02",
		EndDate:   "2026-03-06",
	})
	assert.NoError(t, err)
	assert.Equal(t, 10, balance)

	// A holiday appears after submission; restores still use the stored
	// total, not a recomputation.
	deps.policies.holidayDatesFn = func(ctx context.Context, cid string) ([]time.Time, error) {
		return []time.Time{time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)}, nil
	}
	deps.repo.findForUpdateFn = func(ctx context.Context, cid, id string) (*timeoff.Request, error) {
		return created, nil
	}

	expectTx(t, deps.sqlMock, true)
	_, err = deps.service.Withdraw(ctx, companyID.String(), owner, created.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, 15, balance)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}
