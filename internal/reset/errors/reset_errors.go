package reseterrors

import (
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"reset year out of range",
		http.StatusBadRequest,
	)
	ErrAlreadyReset = apperror.New(
		apperror.CodeConflict,
		"balances were already reset for this year",
		http.StatusConflict,
	)
)
