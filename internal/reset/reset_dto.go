package reset

type RunResetRequest struct {
	// Year defaults to the current year when omitted.
	Year int `json:"year"`
}

type ResetResultResponse struct {
	Year           int      `json:"year"`
	EmployeesReset int      `json:"employees_reset"`
	Categories     []string `json:"categories"`
}
