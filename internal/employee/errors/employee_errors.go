package employeeerrors

import (
	"fmt"
	"net/http"
	"strings"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidHireDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid hire_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrDuplicateEmail = apperror.New(
		apperror.CodeConflict,
		"an employee with this email already exists",
		http.StatusConflict,
	)
	ErrSelfManager = apperror.New(
		apperror.CodeInvalidInput,
		"an employee cannot be their own manager",
		http.StatusBadRequest,
	)
	ErrCyclicHierarchy = apperror.New(
		apperror.CodeInvalidState,
		"circular reporting structure detected",
		http.StatusConflict,
	)
)

// CyclicHierarchy names the employees stranded on a manager cycle so the
// caller can fix the data instead of guessing. It wraps ErrCyclicHierarchy
// so errors.Is still matches the sentinel.
func CyclicHierarchy(orphanedEmails []string) *apperror.AppError {
	return apperror.Wrap(
		ErrCyclicHierarchy,
		apperror.CodeInvalidState,
		fmt.Sprintf("circular reporting structure detected involving: %s", strings.Join(orphanedEmails, ", ")),
		http.StatusConflict,
	)
}
