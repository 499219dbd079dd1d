package policy

import "go-timeoff/internal/calendar"

type UpdateWeekendsRequest struct {
	Weekends calendar.WeekendDefinition `json:"weekends" binding:"required"`
}

type SaveResetPolicyRequest struct {
	ResetMonth int `json:"reset_month" binding:"required,min=1,max=12"`
	ResetDay   int `json:"reset_day" binding:"required,min=1,max=31"`

	VacationMax int `json:"vacation_max" binding:"min=0"`
	SickMax     int `json:"sick_max" binding:"min=0"`
	PersonalMax int `json:"personal_max" binding:"min=0"`

	ResetVacation bool `json:"reset_vacation"`
	ResetSick     bool `json:"reset_sick"`
	ResetPersonal bool `json:"reset_personal"`
}

type AddHolidayRequest struct {
	Name string `json:"name" binding:"required"`
	Date string `json:"date" binding:"required"`
}

type PolicyResponse struct {
	CompanyID string                     `json:"company_id"`
	Weekends  calendar.WeekendDefinition `json:"weekends"`

	ResetMonth int `json:"reset_month"`
	ResetDay   int `json:"reset_day"`

	VacationMax int `json:"vacation_max"`
	SickMax     int `json:"sick_max"`
	PersonalMax int `json:"personal_max"`

	ResetVacation bool `json:"reset_vacation"`
	ResetSick     bool `json:"reset_sick"`
	ResetPersonal bool `json:"reset_personal"`

	LastResetYear *int `json:"last_reset_year,omitempty"`
}

type HolidayResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}
