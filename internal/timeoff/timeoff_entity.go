package timeoff

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusDenied    = "Denied"
	StatusWithdrawn = "Withdrawn"
)

const (
	ActionCreated     = "Created"
	ActionApproved    = "Approved"
	ActionDenied      = "Denied"
	ActionRescheduled = "Rescheduled"
	ActionWithdrawn   = "Withdrawn"
)

type Request struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_time_off_requests_company_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_time_off_requests_employee_dates"`

	Category  string    `gorm:"type:varchar(30);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_time_off_requests_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_time_off_requests_employee_dates"`
	// TotalDays is always the server-side calendar computation for the
	// current date range; restores pay back exactly this stored value.
	TotalDays int    `gorm:"type:int;not null"`
	Reason    string `gorm:"type:text"`

	Status string `gorm:"type:varchar(20);not null;default:'Pending';index:idx_time_off_requests_company_status"`

	RequestedAt time.Time `gorm:"not null;default:now()"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index:idx_time_off_requests_deleted_at"`
}

func (Request) TableName() string { return "time_off_requests" }

// HistoryEntry is one line of a request's append-only audit trail. Entries
// are never updated or deleted while the request lives.
type HistoryEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index:idx_time_off_history_request"`

	Action    string    `gorm:"type:varchar(20);not null"`
	Timestamp time.Time `gorm:"not null;default:now()"`
}

func (HistoryEntry) TableName() string { return "time_off_request_history" }
