package policy

import (
	"time"

	"go-timeoff/internal/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeOffPolicy is the single per-company settings row: which weekdays are
// non-working, and the annual balance reset configuration.
type TimeOffPolicy struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	Weekends calendar.WeekendDefinition `gorm:"serializer:json;type:jsonb"`

	ResetMonth int `gorm:"type:int;not null;default:1"`
	ResetDay   int `gorm:"type:int;not null;default:1"`

	VacationMax int `gorm:"type:int;not null;default:15"`
	SickMax     int `gorm:"type:int;not null;default:5"`
	PersonalMax int `gorm:"type:int;not null;default:3"`

	ResetVacation bool `gorm:"not null;default:true"`
	ResetSick     bool `gorm:"not null;default:true"`
	ResetPersonal bool `gorm:"not null;default:true"`

	// LastResetYear guards the once-per-year reset; nil until the first run.
	LastResetYear *int `gorm:"type:int"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TimeOffPolicy) TableName() string { return "time_off_policies" }

type Holiday struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_holidays_company"`

	Name string    `gorm:"type:varchar(120);not null"`
	Date time.Time `gorm:"type:date;not null"`

	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_holidays_deleted_at"`
}

func (Holiday) TableName() string { return "time_off_holidays" }
