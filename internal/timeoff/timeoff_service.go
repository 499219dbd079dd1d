package timeoff

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-timeoff/internal/calendar"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/events"
	"go-timeoff/internal/ledger"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/policy"
	"go-timeoff/internal/shared/contextutil"
	timeofferrors "go-timeoff/internal/timeoff/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Actor identifies who is performing an operation, resolved from the
// authenticated session by the transport layer.
type Actor struct {
	EmployeeID string
	Email      string
	Role       string
}

//go:generate mockgen -source=timeoff_service.go -destination=mock/timeoff_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, actor Actor, req CreateTimeOffRequest) (TimeOffResponse, error)
	Approve(ctx context.Context, companyID string, actor Actor, id string) (TimeOffResponse, error)
	Deny(ctx context.Context, companyID string, actor Actor, id string) (TimeOffResponse, error)
	Withdraw(ctx context.Context, companyID string, actor Actor, id string) (TimeOffResponse, error)
	Reschedule(ctx context.Context, companyID string, actor Actor, id string, req RescheduleTimeOffRequest) (TimeOffResponse, error)

	ListCompany(ctx context.Context, companyID string) ([]TimeOffResponse, error)
	ListMine(ctx context.Context, companyID string, actor Actor) ([]TimeOffResponse, error)
	GetByID(ctx context.Context, companyID, id string) (TimeOffResponse, error)
	History(ctx context.Context, companyID, id string) ([]HistoryResponse, error)
}

// service runs every transition inside a single transaction: the locked
// status re-check, the status write, the ledger delta, the history line and
// the outbox row commit or roll back together.
type service struct {
	db        *sql.DB
	repo      Repository
	ledger    ledger.Repository
	employees employee.Repository
	policies  policy.Repository
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledgerRepo ledger.Repository,
	employees employee.Repository,
	policies policy.Repository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("timeoff.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timeoff.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		ledger:    ledgerRepo,
		employees: employees,
		policies:  policies,
		outbox:    outbox,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, companyID string, actor Actor, req CreateTimeOffRequest) (TimeOffResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(actor.EmployeeID); err != nil {
		return TimeOffResponse{}, timeofferrors.ErrInvalidActorID
	}

	category := ledger.Category(req.Category)
	if !ledger.Valid(category) {
		return TimeOffResponse{}, timeofferrors.ErrInvalidCategory
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return TimeOffResponse{}, err
	}

	owner, err := s.employees.FindByIDAndCompany(ctx, companyID, actor.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeOffResponse{}, timeofferrors.ErrEmployeeNotInCompany
		}
		return TimeOffResponse{}, err
	}

	totalDays, err := s.chargeableDays(ctx, companyID, start, end)
	if err != nil {
		return TimeOffResponse{}, err
	}

	request := &Request{
		ID:          uuid.New(),
		CompanyID:   owner.CompanyID,
		EmployeeID:  owner.ID,
		Category:    string(category),
		StartDate:   start,
		EndDate:     end,
		TotalDays:   totalDays,
		Reason:      req.Reason,
		Status:      StatusPending,
		RequestedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TimeOffResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
		return TimeOffResponse{}, err
	}

	var newBalance *int
	if category != ledger.CategoryUnpaid {
		// Balance is charged on submission, not on approval. Over-draw is
		// allowed; the balance simply goes negative.
		balance, err := s.ledger.WithTx(tx).ApplyDelta(ctx, actor.EmployeeID, category, -totalDays)
		if err != nil {
			return TimeOffResponse{}, err
		}
		newBalance = &balance
	}

	if err := s.appendHistory(ctx, tx, request.ID, ActionCreated); err != nil {
		return TimeOffResponse{}, err
	}
	if err := s.queueRequestChanged(ctx, tx, request, ActionCreated); err != nil {
		return TimeOffResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return TimeOffResponse{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("time off request created",
		zap.String("request_id", request.ID.String()),
		zap.String("employee_id", actor.EmployeeID),
		zap.String("category", string(category)),
		zap.Int("total_days", totalDays),
	)
	return mapRequestToResponse(*request, newBalance), nil
}

func (s *service) Approve(ctx context.Context, companyID string, actor Actor, id string) (TimeOffResponse, error) {
	return s.decide(ctx, companyID, actor, id, ActionApproved)
}

func (s *service) Deny(ctx context.Context, companyID string, actor Actor, id string) (TimeOffResponse, error) {
	return s.decide(ctx, companyID, actor, id, ActionDenied)
}

// decide runs the manager-gated Pending transitions. Approval never touches
// the ledger; denial restores the stored TotalDays for chargeable categories.
func (s *service) decide(ctx context.Context, companyID string, actor Actor, id, action string) (TimeOffResponse, error) {
	if err := validateIDs(companyID, actor.EmployeeID, id); err != nil {
		return TimeOffResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TimeOffResponse{}, err
	}
	defer tx.Rollback()

	request, err := s.lockRequest(ctx, tx, companyID, id)
	if err != nil {
		return TimeOffResponse{}, err
	}
	if request.Status != StatusPending {
		return TimeOffResponse{}, timeofferrors.ErrInvalidStatusTransition
	}

	owner, err := s.employees.FindByIDAndCompany(ctx, companyID, request.EmployeeID.String())
	if err != nil {
		return TimeOffResponse{}, err
	}
	if owner.ManagerEmail == nil || !strings.EqualFold(*owner.ManagerEmail, actor.Email) {
		return TimeOffResponse{}, timeofferrors.ErrNotRequestManager
	}

	status := StatusApproved
	var newBalance *int
	if action == ActionDenied {
		status = StatusDenied
		newBalance, err = s.restoreDays(ctx, tx, request)
		if err != nil {
			return TimeOffResponse{}, err
		}
	}

	if err := s.repo.WithTx(tx).UpdateStatus(ctx, id, status); err != nil {
		return TimeOffResponse{}, err
	}
	if err := s.appendHistory(ctx, tx, request.ID, action); err != nil {
		return TimeOffResponse{}, err
	}
	if err := s.queueRequestChanged(ctx, tx, request, action); err != nil {
		return TimeOffResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return TimeOffResponse{}, err
	}

	request.Status = status
	contextutil.GetLogger(ctx, s.logger).Info("time off request decided",
		zap.String("request_id", id),
		zap.String("action", action),
		zap.String("decided_by", actor.EmployeeID),
	)
	return mapRequestToResponse(*request, newBalance), nil
}

func (s *service) Withdraw(ctx context.Context, companyID string, actor Actor, id string) (TimeOffResponse, error) {
	if err := validateIDs(companyID, actor.EmployeeID, id); err != nil {
		return TimeOffResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TimeOffResponse{}, err
	}
	defer tx.Rollback()

	request, err := s.lockRequest(ctx, tx, companyID, id)
	if err != nil {
		return TimeOffResponse{}, err
	}
	if request.EmployeeID.String() != actor.EmployeeID {
		return TimeOffResponse{}, timeofferrors.ErrNotRequestOwner
	}
	if request.Status != StatusPending {
		return TimeOffResponse{}, timeofferrors.ErrInvalidStatusTransition
	}

	newBalance, err := s.restoreDays(ctx, tx, request)
	if err != nil {
		return TimeOffResponse{}, err
	}

	if err := s.repo.WithTx(tx).UpdateStatus(ctx, id, StatusWithdrawn); err != nil {
		return TimeOffResponse{}, err
	}
	if err := s.appendHistory(ctx, tx, request.ID, ActionWithdrawn); err != nil {
		return TimeOffResponse{}, err
	}
	if err := s.queueRequestChanged(ctx, tx, request, ActionWithdrawn); err != nil {
		return TimeOffResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return TimeOffResponse{}, err
	}

	request.Status = StatusWithdrawn
	contextutil.GetLogger(ctx, s.logger).Info("time off request withdrawn", zap.String("request_id", id))
	return mapRequestToResponse(*request, newBalance), nil
}

func (s *service) Reschedule(ctx context.Context, companyID string, actor Actor, id string, req RescheduleTimeOffRequest) (TimeOffResponse, error) {
	if err := validateIDs(companyID, actor.EmployeeID, id); err != nil {
		return TimeOffResponse{}, err
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return TimeOffResponse{}, err
	}
	if !start.After(time.Now().UTC().Truncate(24 * time.Hour)) {
		return TimeOffResponse{}, timeofferrors.ErrRescheduleNotFuture
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TimeOffResponse{}, err
	}
	defer tx.Rollback()

	request, err := s.lockRequest(ctx, tx, companyID, id)
	if err != nil {
		return TimeOffResponse{}, err
	}
	if request.EmployeeID.String() != actor.EmployeeID {
		return TimeOffResponse{}, timeofferrors.ErrNotRequestOwner
	}
	if request.Status != StatusApproved {
		return TimeOffResponse{}, timeofferrors.ErrInvalidStatusTransition
	}

	newTotal, err := s.chargeableDays(ctx, companyID, start, end)
	if err != nil {
		return TimeOffResponse{}, err
	}

	var newBalance *int
	category := ledger.Category(request.Category)
	if category != ledger.CategoryUnpaid {
		// The old range was already charged; apply only the difference so
		// the net charge equals the new range's day count.
		balance, err := s.ledger.WithTx(tx).ApplyDelta(ctx, actor.EmployeeID, category, request.TotalDays-newTotal)
		if err != nil {
			return TimeOffResponse{}, err
		}
		newBalance = &balance
	}

	// Rescheduling restarts the approval flow.
	if err := s.repo.WithTx(tx).UpdateSchedule(ctx, id, start, end, newTotal, StatusPending); err != nil {
		return TimeOffResponse{}, err
	}
	if err := s.appendHistory(ctx, tx, request.ID, ActionRescheduled); err != nil {
		return TimeOffResponse{}, err
	}
	if err := s.queueRequestChanged(ctx, tx, request, ActionRescheduled); err != nil {
		return TimeOffResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return TimeOffResponse{}, err
	}

	request.StartDate = start
	request.EndDate = end
	request.TotalDays = newTotal
	request.Status = StatusPending
	contextutil.GetLogger(ctx, s.logger).Info("time off request rescheduled",
		zap.String("request_id", id),
		zap.Int("total_days", newTotal),
	)
	return mapRequestToResponse(*request, newBalance), nil
}

func (s *service) ListCompany(ctx context.Context, companyID string) ([]TimeOffResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, timeofferrors.ErrInvalidCompanyID
	}
	requests, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapRequestsToResponses(requests), nil
}

func (s *service) ListMine(ctx context.Context, companyID string, actor Actor) ([]TimeOffResponse, error) {
	if err := validateIDs(companyID, actor.EmployeeID, actor.EmployeeID); err != nil {
		return nil, err
	}
	requests, err := s.repo.FindAllByEmployee(ctx, companyID, actor.EmployeeID)
	if err != nil {
		return nil, err
	}
	return mapRequestsToResponses(requests), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (TimeOffResponse, error) {
	if err := validateIDs(companyID, id, id); err != nil {
		return TimeOffResponse{}, err
	}
	request, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeOffResponse{}, timeofferrors.ErrRequestNotFound
		}
		return TimeOffResponse{}, err
	}
	return mapRequestToResponse(*request, nil), nil
}

func (s *service) History(ctx context.Context, companyID, id string) ([]HistoryResponse, error) {
	if err := validateIDs(companyID, id, id); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByIDAndCompany(ctx, companyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timeofferrors.ErrRequestNotFound
		}
		return nil, err
	}

	entries, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	responses := make([]HistoryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, HistoryResponse{
			ID:        e.ID.String(),
			Action:    e.Action,
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return responses, nil
}

// chargeableDays recomputes the day count from the company calendar. Client
// supplied totals are never trusted.
func (s *service) chargeableDays(ctx context.Context, companyID string, start, end time.Time) (int, error) {
	weekends := calendar.DefaultWeekends()
	p, err := s.policies.GetPolicy(ctx, companyID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	if err == nil {
		weekends = p.Weekends
	}

	holidays, err := s.policies.HolidayDates(ctx, companyID)
	if err != nil {
		return 0, err
	}
	return calendar.CountChargeableDays(start, end, weekends, holidays), nil
}

func (s *service) lockRequest(ctx context.Context, tx *sql.Tx, companyID, id string) (*Request, error) {
	request, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timeofferrors.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// restoreDays pays the stored TotalDays back to the ledger. Unpaid leave
// never touched the balance, so there is nothing to restore.
func (s *service) restoreDays(ctx context.Context, tx *sql.Tx, request *Request) (*int, error) {
	category := ledger.Category(request.Category)
	if category == ledger.CategoryUnpaid {
		return nil, nil
	}
	balance, err := s.ledger.WithTx(tx).ApplyDelta(ctx, request.EmployeeID.String(), category, request.TotalDays)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (s *service) appendHistory(ctx context.Context, tx *sql.Tx, requestID uuid.UUID, action string) error {
	return s.repo.WithTx(tx).InsertHistory(ctx, &HistoryEntry{
		ID:        uuid.New(),
		RequestID: requestID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	})
}

func (s *service) queueRequestChanged(ctx context.Context, tx *sql.Tx, request *Request, action string) error {
	if s.outbox == nil {
		return nil
	}
	event := events.RequestChangedEvent{
		EventType:  "request_" + strings.ToLower(action),
		RequestID:  contextutil.GetRequestID(ctx),
		CompanyID:  request.CompanyID.String(),
		EmployeeID: request.EmployeeID.String(),
		ActorID:    contextutil.GetActorID(ctx),
		TimeOffID:  request.ID.String(),
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "time_off_request",
		AggregateID:   request.ID.String(),
		EventType:     event.EventType,
		Topic:         events.RequestChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func validateIDs(companyID, actorID, id string) error {
	if _, err := uuid.Parse(companyID); err != nil {
		return timeofferrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return timeofferrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return timeofferrors.ErrRequestNotFound
	}
	return nil
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, timeofferrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, timeofferrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, timeofferrors.ErrInvalidDateRange
	}
	return start, end, nil
}

func mapRequestToResponse(r Request, newBalance *int) TimeOffResponse {
	return TimeOffResponse{
		ID:          r.ID.String(),
		CompanyID:   r.CompanyID.String(),
		EmployeeID:  r.EmployeeID.String(),
		Category:    r.Category,
		StartDate:   r.StartDate.Format(dateLayout),
		EndDate:     r.EndDate.Format(dateLayout),
		TotalDays:   r.TotalDays,
		Reason:      r.Reason,
		Status:      r.Status,
		RequestedAt: r.RequestedAt.UTC().Format(time.RFC3339),
		NewBalance:  newBalance,
	}
}

func mapRequestsToResponses(requests []Request) []TimeOffResponse {
	responses := make([]TimeOffResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, mapRequestToResponse(r, nil))
	}
	return responses
}
