// Package errors provides the application error taxonomy.
// Every service-layer failure is an *AppError so that handlers can render a
// stable code and a user-facing message without leaking datastore text.
package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that
// errors.Is(err, ErrForbidden) holds for copies made by Wrap and WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// IsUniqueViolation reports whether err comes from a unique constraint.
// gorm translates driver errors to ErrDuplicatedKey when TranslateError is on;
// the substring checks cover connections opened without it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "No access", StatusCode: http.StatusForbidden}
	ErrNotOwner     = &AppError{Code: "NOT_OWNER", Message: "Only the space owner can do this", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInvalidMonth     = &AppError{Code: "INVALID_MONTH", Message: "Month must be in YYYY-MM format", StatusCode: http.StatusBadRequest}
	ErrInvalidCursor    = &AppError{Code: "INVALID_CURSOR", Message: "Invalid cursor", StatusCode: http.StatusBadRequest}
	ErrNoFieldsToUpdate = &AppError{Code: "NO_FIELDS_TO_UPDATE", Message: "No fields to update", StatusCode: http.StatusBadRequest}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer   = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Space errors.
var (
	ErrSlugTaken      = &AppError{Code: "SLUG_TAKEN", Message: "A space with this slug already exists", StatusCode: http.StatusConflict}
	ErrMemberExists   = &AppError{Code: "MEMBER_EXISTS", Message: "This user is already a member", StatusCode: http.StatusConflict}
	ErrOwnerRemoval   = &AppError{Code: "OWNER_REMOVAL", Message: "The space owner cannot be removed", StatusCode: http.StatusBadRequest}
	ErrProfileMissing = &AppError{Code: "PROFILE_NOT_FOUND", Message: "Profile not found", StatusCode: http.StatusNotFound}
)

// Category and holding errors.
var (
	ErrDuplicateName       = &AppError{Code: "DUPLICATE_NAME", Message: "A record with this name already exists", StatusCode: http.StatusConflict}
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse       = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions or budgets", StatusCode: http.StatusConflict}
	ErrHoldingNotFound     = &AppError{Code: "HOLDING_NOT_FOUND", Message: "Holding not found", StatusCode: http.StatusNotFound}
	ErrHoldingInUse        = &AppError{Code: "HOLDING_IN_USE", Message: "Holding is used by existing transactions", StatusCode: http.StatusConflict}
	ErrInvalidCategoryKind = &AppError{Code: "INVALID_CATEGORY_KIND", Message: "Budgets can only be set on expense categories", StatusCode: http.StatusBadRequest}
)

// Transaction consistency errors.
var (
	ErrTransactionNotFound     = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType  = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrTransactionInconsistent = &AppError{Code: "TRANSACTION_INCONSISTENT", Message: "Transaction fields do not match its type", StatusCode: http.StatusUnprocessableEntity}
	ErrSameHoldingTransfer     = &AppError{Code: "SAME_HOLDING_TRANSFER", Message: "Cannot transfer to the same holding", StatusCode: http.StatusUnprocessableEntity}
	ErrInvalidReference        = &AppError{Code: "INVALID_REFERENCE", Message: "Referenced category or holding does not belong to this space", StatusCode: http.StatusUnprocessableEntity}
)

// Budget errors.
var (
	ErrBudgetConflict = &AppError{Code: "BUDGET_CONFLICT", Message: "A budget for this category and month already exists", StatusCode: http.StatusConflict}
)
