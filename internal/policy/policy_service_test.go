package policy_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-timeoff/internal/calendar"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/policy"
	policyerrors "go-timeoff/internal/policy/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakePolicyRepository struct {
	getPolicyFn      func(ctx context.Context, companyID string) (*policy.TimeOffPolicy, error)
	upsertWeekendsFn func(ctx context.Context, companyID string, weekends calendar.WeekendDefinition) error
	upsertResetFn    func(ctx context.Context, p *policy.TimeOffPolicy) error
	listHolidaysFn   func(ctx context.Context, companyID string) ([]policy.Holiday, error)
	addHolidayFn     func(ctx context.Context, h *policy.Holiday) error
	deleteHolidayFn  func(ctx context.Context, companyID, id string) (int64, error)
}

func (f *fakePolicyRepository) WithTx(tx *sql.Tx) policy.Repository { return f }

func (f *fakePolicyRepository) GetPolicy(ctx context.Context, companyID string) (*policy.TimeOffPolicy, error) {
	if f.getPolicyFn != nil {
		return f.getPolicyFn(ctx, companyID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePolicyRepository) UpsertWeekends(ctx context.Context, companyID string, weekends calendar.WeekendDefinition) error {
	if f.upsertWeekendsFn != nil {
		return f.upsertWeekendsFn(ctx, companyID, weekends)
	}
	return nil
}

func (f *fakePolicyRepository) UpsertResetPolicy(ctx context.Context, p *policy.TimeOffPolicy) error {
	if f.upsertResetFn != nil {
		return f.upsertResetFn(ctx, p)
	}
	return nil
}

func (f *fakePolicyRepository) ClaimResetYear(context.Context, string, int) (bool, error) {
	return true, nil
}

func (f *fakePolicyRepository) ListHolidays(ctx context.Context, companyID string) ([]policy.Holiday, error) {
	if f.listHolidaysFn != nil {
		return f.listHolidaysFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakePolicyRepository) HolidayDates(context.Context, string) ([]time.Time, error) {
	return nil, nil
}

func (f *fakePolicyRepository) AddHoliday(ctx context.Context, h *policy.Holiday) error {
	if f.addHolidayFn != nil {
		return f.addHolidayFn(ctx, h)
	}
	return nil
}

func (f *fakePolicyRepository) DeleteHoliday(ctx context.Context, companyID, id string) (int64, error) {
	if f.deleteHolidayFn != nil {
		return f.deleteHolidayFn(ctx, companyID, id)
	}
	return 0, nil
}

type fakeOutboxRepository struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(context.Context, int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepository) MarkSent(context.Context, string) error           { return nil }
func (f *fakeOutboxRepository) MarkFailed(context.Context, string, string) error { return nil }

type policyServiceDeps struct {
	db      *sql.DB
	service policy.Service
	repo    *fakePolicyRepository
	outbox  *fakeOutboxRepository
}

func setupPolicyServiceTest(t *testing.T) *policyServiceDeps {
	t.Helper()

	db, _, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakePolicyRepository{}
	outbox := &fakeOutboxRepository{}
	svc := policy.NewService(db, repo, outbox)

	return &policyServiceDeps{db: db, service: svc, repo: repo, outbox: outbox}
}

func TestPolicyService_Get(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("returns defaults when nothing is saved", func(t *testing.T) {
		deps := setupPolicyServiceTest(t)
		defer deps.db.Close()

		resp, err := deps.service.Get(ctx, companyID.String())

		assert.NoError(t, err)
		assert.Equal(t, calendar.DefaultWeekends(), resp.Weekends)
		assert.Equal(t, 1, resp.ResetMonth)
		assert.Equal(t, 1, resp.ResetDay)
		assert.Equal(t, 15, resp.VacationMax)
		assert.Equal(t, 5, resp.SickMax)
		assert.Equal(t, 3, resp.PersonalMax)
		assert.True(t, resp.ResetVacation)
		assert.Nil(t, resp.LastResetYear)
	})

	t.Run("returns the stored policy", func(t *testing.T) {
		deps := setupPolicyServiceTest(t)
		defer deps.db.Close()

		year := 2025
		deps.repo.getPolicyFn = func(ctx context.Context, cid string) (*policy.TimeOffPolicy, error) {
			return &policy.TimeOffPolicy{
				CompanyID:     companyID,
				Weekends:      calendar.WeekendDefinition{Fri: true, Sat: true},
				ResetMonth:    4,
				ResetDay:      1,
				VacationMax:   25,
				SickMax:       10,
				PersonalMax:   2,
				ResetVacation: true,
				LastResetYear: &year,
			}, nil
		}

		resp, err := deps.service.Get(ctx, companyID.String())

		assert.NoError(t, err)
		assert.Equal(t, calendar.WeekendDefinition{Fri: true, Sat: true}, resp.Weekends)
		assert.Equal(t, 25, resp.VacationMax)
		assert.Equal(t, &year, resp.LastResetYear)
	})

	t.Run("negative invalid company id", func(t *testing.T) {
		deps := setupPolicyServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Get(ctx, "nope")

		assert.ErrorIs(t, err, policyerrors.ErrInvalidCompanyID)
	})
}

func TestPolicyService_UpdateWeekends(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	deps := setupPolicyServiceTest(t)
	defer deps.db.Close()

	custom := calendar.WeekendDefinition{Fri: true, Sat: true}
	var saved calendar.WeekendDefinition
	deps.repo.upsertWeekendsFn = func(ctx context.Context, cid string, weekends calendar.WeekendDefinition) error {
		saved = weekends
		return nil
	}
	deps.repo.getPolicyFn = func(ctx context.Context, cid string) (*policy.TimeOffPolicy, error) {
		return &policy.TimeOffPolicy{CompanyID: companyID, Weekends: custom}, nil
	}

	resp, err := deps.service.UpdateWeekends(ctx, companyID.String(), policy.UpdateWeekendsRequest{Weekends: custom})

	assert.NoError(t, err)
	assert.Equal(t, custom, saved)
	assert.Equal(t, custom, resp.Weekends)
	assert.Len(t, deps.outbox.events, 1)
	assert.Equal(t, "weekends_updated", deps.outbox.events[0].EventType)
}

func TestPolicyService_SaveResetPolicy(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	deps := setupPolicyServiceTest(t)
	defer deps.db.Close()

	var saved *policy.TimeOffPolicy
	deps.repo.upsertResetFn = func(ctx context.Context, p *policy.TimeOffPolicy) error {
		saved = p
		return nil
	}
	deps.repo.getPolicyFn = func(ctx context.Context, cid string) (*policy.TimeOffPolicy, error) {
		return saved, nil
	}

	resp, err := deps.service.SaveResetPolicy(ctx, companyID.String(), policy.SaveResetPolicyRequest{
		ResetMonth:    4,
		ResetDay:      1,
		VacationMax:   20,
		SickMax:       8,
		PersonalMax:   4,
		ResetVacation: true,
		ResetSick:     true,
	})

	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, 20, saved.VacationMax)
	assert.False(t, saved.ResetPersonal)
	assert.Equal(t, 4, resp.ResetMonth)
	assert.Len(t, deps.outbox.events, 1)
	assert.Equal(t, "reset_policy_saved", deps.outbox.events[0].EventType)
}

func TestPolicyService_Holidays(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("add holiday", func(t *testing.T) {
		deps := setupPolicyServiceTest(t)
		defer deps.db.Close()

		var saved *policy.Holiday
		deps.repo.addHolidayFn = func(ctx context.Context, h *policy.Holiday) error {
			saved = h
			return nil
		}

		resp, err := deps.service.AddHoliday(ctx, companyID.String(), policy.AddHolidayRequest{
			Name: "Founders Day",
			Date: "2026-03-04",
		})

		assert.NoError(t, err)
		assert.NotNil(t, saved)
		assert.Equal(t, "Founders Day", resp.Name)
		assert.Equal(t, "2026-03-04", resp.Date)
		assert.Len(t, deps.outbox.events, 1)
		assert.Equal(t, "holiday_added", deps.outbox.events[0].EventType)
	})

	t.Run("negative bad holiday date", func(t *testing.T) {
		deps := setupPolicyServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.AddHoliday(ctx, companyID.String(), policy.AddHolidayRequest{
			Name: "Founders Day",
			Date: "03/04/2026",
		})

		assert.ErrorIs(t, err, policyerrors.ErrInvalidDateFormat)
	})

	t.Run("delete unknown holiday", func(t *testing.T) {
		deps := setupPolicyServiceTest(t)
		defer deps.db.Close()

		err := deps.service.DeleteHoliday(ctx, companyID.String(), uuid.New().String())

		assert.ErrorIs(t, err, policyerrors.ErrHolidayNotFound)
	})

	t.Run("delete existing holiday", func(t *testing.T) {
		deps := setupPolicyServiceTest(t)
		defer deps.db.Close()

		deps.repo.deleteHolidayFn = func(ctx context.Context, cid, id string) (int64, error) {
			return 1, nil
		}

		err := deps.service.DeleteHoliday(ctx, companyID.String(), uuid.New().String())

		assert.NoError(t, err)
		assert.Len(t, deps.outbox.events, 1)
		assert.Equal(t, "holiday_deleted", deps.outbox.events[0].EventType)
	})
}
