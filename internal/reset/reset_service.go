package reset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-timeoff/internal/calendar"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/events"
	"go-timeoff/internal/ledger"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/policy"
	reseterrors "go-timeoff/internal/reset/errors"
	"go-timeoff/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=reset_service.go -destination=mock/reset_service_mock.go -package=mock
type Service interface {
	Run(ctx context.Context, companyID string, year int) (ResetResultResponse, error)
}

// service overwrites every employee's balances with the per-category maxima
// once per calendar year. The whole run is a single transaction: claiming the
// year and rewriting every balance commit together or not at all.
type service struct {
	db        *sql.DB
	policies  policy.Repository
	employees employee.Repository
	ledger    ledger.Repository
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	policies policy.Repository,
	employees employee.Repository,
	ledgerRepo ledger.Repository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("reset.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reset.service")
	}
	return &service{
		db:        db,
		policies:  policies,
		employees: employees,
		ledger:    ledgerRepo,
		outbox:    outbox,
		logger:    l,
	}
}

func (s *service) Run(ctx context.Context, companyID string, year int) (ResetResultResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return ResetResultResponse{}, reseterrors.ErrInvalidCompanyID
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	if year < 2000 || year > 2200 {
		return ResetResultResponse{}, reseterrors.ErrInvalidYear
	}

	p, err := s.policies.GetPolicy(ctx, companyID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return ResetResultResponse{}, err
		}
		// No saved policy yet. Materialize the defaults so the year claim
		// has a row to lock.
		p = defaultResetPolicy(companyID)
		if err := s.policies.UpsertResetPolicy(ctx, p); err != nil {
			return ResetResultResponse{}, err
		}
	}

	// Cheap pre-check; the transactional claim below is the real guard.
	if p.LastResetYear != nil && *p.LastResetYear >= year {
		return ResetResultResponse{}, reseterrors.ErrAlreadyReset
	}

	categories := enabledCategories(p)
	if len(categories) == 0 {
		s.logger.Info("annual reset skipped, no categories enabled",
			zap.String("company_id", companyID),
			zap.Int("year", year),
		)
		return ResetResultResponse{Year: year, Categories: []string{}}, nil
	}

	staff, err := s.employees.FindAllByCompany(ctx, companyID)
	if err != nil {
		return ResetResultResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ResetResultResponse{}, err
	}
	defer tx.Rollback()

	// The claim both records the year and locks the policy row, so two
	// concurrent runs serialize here and the loser sees the claimed year.
	claimed, err := s.policies.WithTx(tx).ClaimResetYear(ctx, companyID, year)
	if err != nil {
		return ResetResultResponse{}, err
	}
	if !claimed {
		return ResetResultResponse{}, reseterrors.ErrAlreadyReset
	}

	ledgerTx := s.ledger.WithTx(tx)
	for _, emp := range staff {
		for _, c := range categories {
			max := categoryMaximum(p, c)
			if err := ledgerTx.ResetToMaximum(ctx, emp.ID.String(), c, max); err != nil {
				return ResetResultResponse{}, err
			}
		}
	}

	if err := s.queueResetCompleted(ctx, tx, companyID, year); err != nil {
		return ResetResultResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ResetResultResponse{}, err
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, string(c))
	}
	s.logger.Info("annual reset completed",
		zap.String("company_id", companyID),
		zap.Int("year", year),
		zap.Int("employees", len(staff)),
		zap.Strings("categories", names),
	)
	return ResetResultResponse{
		Year:           year,
		EmployeesReset: len(staff),
		Categories:     names,
	}, nil
}

func (s *service) queueResetCompleted(ctx context.Context, tx *sql.Tx, companyID string, year int) error {
	if s.outbox == nil {
		return nil
	}
	event := events.PolicyChangedEvent{
		EventType:  "annual_reset_completed",
		RequestID:  contextutil.GetRequestID(ctx),
		CompanyID:  companyID,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "policy",
		AggregateID:   companyID,
		EventType:     event.EventType,
		Topic:         events.PolicyChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func defaultResetPolicy(companyID string) *policy.TimeOffPolicy {
	return &policy.TimeOffPolicy{
		CompanyID:     uuid.MustParse(companyID),
		Weekends:      calendar.DefaultWeekends(),
		ResetMonth:    1,
		ResetDay:      1,
		VacationMax:   15,
		SickMax:       5,
		PersonalMax:   3,
		ResetVacation: true,
		ResetSick:     true,
		ResetPersonal: true,
	}
}

func enabledCategories(p *policy.TimeOffPolicy) []ledger.Category {
	var categories []ledger.Category
	if p.ResetVacation {
		categories = append(categories, ledger.CategoryVacation)
	}
	if p.ResetSick {
		categories = append(categories, ledger.CategorySick)
	}
	if p.ResetPersonal {
		categories = append(categories, ledger.CategoryUnpaid)
	}
	return categories
}

func categoryMaximum(p *policy.TimeOffPolicy, c ledger.Category) int {
	switch c {
	case ledger.CategoryVacation:
		return p.VacationMax
	case ledger.CategorySick:
		return p.SickMax
	default:
		return p.PersonalMax
	}
}
