package employee

type CreateEmployeeRequest struct {
	FullName     string  `json:"full_name" binding:"required"`
	Email        string  `json:"email" binding:"required,email"`
	ManagerEmail *string `json:"manager_email" binding:"omitempty,email"`
	Department   string  `json:"department"`
	Position     string  `json:"position"`
	HireDate     string  `json:"hire_date" binding:"required"`

	VacationBalance int `json:"vacation_balance" binding:"min=0"`
	SickBalance     int `json:"sick_balance" binding:"min=0"`
	PersonalBalance int `json:"personal_balance" binding:"min=0"`
}

type EmployeeResponse struct {
	ID           string  `json:"id"`
	CompanyID    string  `json:"company_id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	ManagerEmail *string `json:"manager_email,omitempty"`
	Department   string  `json:"department,omitempty"`
	Position     string  `json:"position,omitempty"`
	HireDate     string  `json:"hire_date"`

	VacationBalance int `json:"vacation_balance"`
	SickBalance     int `json:"sick_balance"`
	PersonalBalance int `json:"personal_balance"`
}

// OrgNode is one employee in the reporting tree, children being their
// direct reports.
type OrgNode struct {
	ID         string     `json:"id"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Department string     `json:"department,omitempty"`
	Position   string     `json:"position,omitempty"`
	Children   []*OrgNode `json:"children"`
}

type BalanceSummaryResponse struct {
	EmployeeID      string `json:"employee_id"`
	VacationBalance int    `json:"vacation_balance"`
	SickBalance     int    `json:"sick_balance"`
	PersonalBalance int    `json:"personal_balance"`
	PendingRequests int    `json:"pending_requests"`
}
