package timeoff

type CreateTimeOffRequest struct {
	Category  string `json:"category" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

type RescheduleTimeOffRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type TimeOffResponse struct {
	ID         string `json:"id"`
	CompanyID  string `json:"company_id"`
	EmployeeID string `json:"employee_id"`

	Category  string `json:"category"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	TotalDays int    `json:"total_days"`
	Reason    string `json:"reason,omitempty"`

	Status      string `json:"status"`
	RequestedAt string `json:"requested_at"`

	// NewBalance carries the post-transition balance for categories that
	// touch the ledger; nil for unpaid leave and read paths.
	NewBalance *int `json:"new_balance,omitempty"`
}

type HistoryResponse struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}
