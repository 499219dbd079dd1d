package policy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-timeoff/internal/calendar"
	"go-timeoff/internal/events"
	"go-timeoff/internal/messaging/kafka"
	policyerrors "go-timeoff/internal/policy/errors"
	"go-timeoff/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=policy_service.go -destination=mock/policy_service_mock.go -package=mock
type Service interface {
	Get(ctx context.Context, companyID string) (PolicyResponse, error)
	UpdateWeekends(ctx context.Context, companyID string, req UpdateWeekendsRequest) (PolicyResponse, error)
	SaveResetPolicy(ctx context.Context, companyID string, req SaveResetPolicyRequest) (PolicyResponse, error)
	ListHolidays(ctx context.Context, companyID string) ([]HolidayResponse, error)
	AddHoliday(ctx context.Context, companyID string, req AddHolidayRequest) (HolidayResponse, error)
	DeleteHoliday(ctx context.Context, companyID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("policy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("policy.service")
	}
	return &service{db: db, repo: repo, outbox: outbox, logger: l}
}

// Get returns the stored policy, or the defaults when the company has never
// saved one.
func (s *service) Get(ctx context.Context, companyID string) (PolicyResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return PolicyResponse{}, policyerrors.ErrInvalidCompanyID
	}

	p, err := s.repo.GetPolicy(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultPolicyResponse(companyID), nil
		}
		return PolicyResponse{}, err
	}
	return mapPolicyToResponse(*p), nil
}

func (s *service) UpdateWeekends(ctx context.Context, companyID string, req UpdateWeekendsRequest) (PolicyResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return PolicyResponse{}, policyerrors.ErrInvalidCompanyID
	}

	if err := s.repo.UpsertWeekends(ctx, companyID, req.Weekends); err != nil {
		s.logger.Error("update weekends persist failed", zap.Error(err))
		return PolicyResponse{}, err
	}
	s.queuePolicyChanged(ctx, companyID, "weekends_updated")

	s.logger.Info("weekend settings updated", zap.String("company_id", companyID))
	return s.Get(ctx, companyID)
}

func (s *service) SaveResetPolicy(ctx context.Context, companyID string, req SaveResetPolicyRequest) (PolicyResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PolicyResponse{}, policyerrors.ErrInvalidCompanyID
	}

	p := &TimeOffPolicy{
		ID:            uuid.New(),
		CompanyID:     companyUUID,
		Weekends:      calendar.DefaultWeekends(),
		ResetMonth:    req.ResetMonth,
		ResetDay:      req.ResetDay,
		VacationMax:   req.VacationMax,
		SickMax:       req.SickMax,
		PersonalMax:   req.PersonalMax,
		ResetVacation: req.ResetVacation,
		ResetSick:     req.ResetSick,
		ResetPersonal: req.ResetPersonal,
	}

	if err := s.repo.UpsertResetPolicy(ctx, p); err != nil {
		s.logger.Error("save reset policy persist failed", zap.Error(err))
		return PolicyResponse{}, err
	}
	s.queuePolicyChanged(ctx, companyID, "reset_policy_saved")

	s.logger.Info("reset policy saved", zap.String("company_id", companyID))
	return s.Get(ctx, companyID)
}

func (s *service) ListHolidays(ctx context.Context, companyID string) ([]HolidayResponse, error) {
	holidays, err := s.repo.ListHolidays(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		resp[i] = mapHolidayToResponse(h)
	}
	return resp, nil
}

func (s *service) AddHoliday(ctx context.Context, companyID string, req AddHolidayRequest) (HolidayResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return HolidayResponse{}, policyerrors.ErrInvalidCompanyID
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return HolidayResponse{}, policyerrors.ErrInvalidDateFormat
	}

	h := &Holiday{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Name:      req.Name,
		Date:      date,
	}
	if err := s.repo.AddHoliday(ctx, h); err != nil {
		s.logger.Error("add holiday persist failed", zap.Error(err))
		return HolidayResponse{}, err
	}
	s.queueHolidayChanged(ctx, companyID, h.ID.String(), "holiday_added")

	s.logger.Info("holiday added",
		zap.String("company_id", companyID),
		zap.String("holiday_id", h.ID.String()),
		zap.String("date", req.Date),
	)
	return mapHolidayToResponse(*h), nil
}

func (s *service) DeleteHoliday(ctx context.Context, companyID, id string) error {
	affected, err := s.repo.DeleteHoliday(ctx, companyID, id)
	if err != nil {
		s.logger.Error("delete holiday failed", zap.String("holiday_id", id), zap.Error(err))
		return err
	}
	if affected == 0 {
		return policyerrors.ErrHolidayNotFound
	}
	s.queueHolidayChanged(ctx, companyID, id, "holiday_deleted")

	s.logger.Info("holiday deleted",
		zap.String("company_id", companyID),
		zap.String("holiday_id", id),
	)
	return nil
}

// queuePolicyChanged enqueues the advisory change event. Settings writes are
// single-row upserts, so the outbox insert rides outside a transaction; a
// lost event only delays a client refetch.
func (s *service) queuePolicyChanged(ctx context.Context, companyID, eventType string) {
	if s.outbox == nil {
		return
	}
	event := events.PolicyChangedEvent{
		EventType:  eventType,
		RequestID:  contextutil.GetRequestID(ctx),
		CompanyID:  companyID,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal policy event failed", zap.Error(err))
		return
	}
	if err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "policy",
		AggregateID:   companyID,
		EventType:     eventType,
		Topic:         events.PolicyChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue policy event failed", zap.Error(err))
	}
}

func (s *service) queueHolidayChanged(ctx context.Context, companyID, holidayID, eventType string) {
	if s.outbox == nil {
		return
	}
	event := events.HolidayChangedEvent{
		EventType:  eventType,
		RequestID:  contextutil.GetRequestID(ctx),
		CompanyID:  companyID,
		HolidayID:  holidayID,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal holiday event failed", zap.Error(err))
		return
	}
	if err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "holiday",
		AggregateID:   holidayID,
		EventType:     eventType,
		Topic:         events.HolidayChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue holiday event failed", zap.Error(err))
	}
}

func defaultPolicyResponse(companyID string) PolicyResponse {
	return PolicyResponse{
		CompanyID:     companyID,
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

func mapPolicyToResponse(p TimeOffPolicy) PolicyResponse {
	return PolicyResponse{
		CompanyID:     p.CompanyID.String(),
		Weekends:      p.Weekends,
		ResetMonth:    p.ResetMonth,
		ResetDay:      p.ResetDay,
		VacationMax:   p.VacationMax,
		SickMax:       p.SickMax,
		PersonalMax:   p.PersonalMax,
		ResetVacation: p.ResetVacation,
		ResetSick:     p.ResetSick,
		ResetPersonal: p.ResetPersonal,
		LastResetYear: p.LastResetYear,
	}
}

func mapHolidayToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:   h.ID.String(),
		Name: h.Name,
		Date: h.Date.Format("2006-01-02"),
	}
}
