package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_employees_company"`

	FullName string `gorm:"type:varchar(120);not null"`
	Email    string `gorm:"type:varchar(255);not null;uniqueIndex"`
	// ManagerEmail points at another employee of the same company; nil for
	// top-level employees. The org chart is derived from this column.
	ManagerEmail *string `gorm:"type:varchar(255);index:idx_employees_manager_email"`

	Department string    `gorm:"type:varchar(80)"`
	Position   string    `gorm:"type:varchar(80)"`
	HireDate   time.Time `gorm:"type:date"`

	// Leave balances in days. Mutated only through the ledger repository.
	VacationBalance int `gorm:"type:int;not null;default:0"`
	SickBalance     int `gorm:"type:int;not null;default:0"`
	PersonalBalance int `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_employees_deleted_at"`
}
