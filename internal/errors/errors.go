// Package errors provides the application error types. Service-layer
// failures are either an AppError (a coded failure mapped to an HTTP
// status) or a ValidationError (a structured collection of per-field
// violations rendered as a 422).
package errors

import "net/http"

// AppError is a structured application error with a stable code, a
// client-safe message, an HTTP status, and an optional internal cause
// that is logged but never serialized.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap returns a copy of sentinel carrying internal as its cause.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage returns a copy of sentinel with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Violation kinds used by ValidationError. They identify what was wrong
// with a field independently of the human-readable message.
const (
	KindBlank        = "blank"
	KindInvalid      = "invalid"
	KindTaken        = "taken"
	KindTooSmall     = "greater_than"
	KindTooLarge     = "less_than"
	KindInPast       = "in_past"
	KindNotAfter     = "after"
	KindTooShort     = "too_short"
	KindOutOfRange   = "out_of_range"
	KindConfirmation = "confirmation"
)

// FieldError is a single (field, violation kind) pair with a message
// suitable for display.
type FieldError struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ValidationError collects every violation found while validating a
// record. All checks run; nothing short-circuits, so simultaneous
// failures are reported together.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Field + " " + e.Fields[0].Message
}

// Add appends a violation.
func (e *ValidationError) Add(field, kind, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Kind: kind, Message: message})
}

// Any reports whether at least one violation was recorded.
func (e *ValidationError) Any() bool { return len(e.Fields) > 0 }

// On reports whether a violation of the given kind was recorded for field.
func (e *ValidationError) On(field, kind string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Kind == kind {
			return true
		}
	}
	return false
}

// ByField groups messages by field name for serialization.
func (e *ValidationError) ByField() map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = append(out[f.Field], f.Message)
	}
	return out
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Resource lookup errors.
var (
	ErrUserNotFound     = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrWalletNotFound   = &AppError{Code: "WALLET_NOT_FOUND", Message: "Wallet not found", StatusCode: http.StatusNotFound}
	ErrPaymentNotFound  = &AppError{Code: "PAYMENT_NOT_FOUND", Message: "Payment not found", StatusCode: http.StatusNotFound}
	ErrGoalNotFound     = &AppError{Code: "GOAL_NOT_FOUND", Message: "Goal not found", StatusCode: http.StatusNotFound}
	ErrBudgetNotFound   = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
)

// Budget consistency errors. BUDGET_STATE_INVALID marks a state that the
// allocator's invariants make unreachable (for example two open-ended
// budgets for the same category); it is a fault to surface, not a
// condition to silently repair.
var (
	ErrBudgetStateInvalid = &AppError{Code: "BUDGET_STATE_INVALID", Message: "Budget periods for this category are in an inconsistent state", StatusCode: http.StatusInternalServerError}
)
