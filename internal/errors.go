package internal

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBody      ErrorCode = "INVALID_BODY"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"

	ErrCodeInvalidCredentials      ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive            ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken            ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired            ErrorCode = "TOKEN_EXPIRED"
	ErrCodeUnauthenticated         ErrorCode = "UNAUTHENTICATED"
	ErrCodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"

	ErrCodeUserNotFound           ErrorCode = "USER_NOT_FOUND"
	ErrCodeSupervisorNotFound     ErrorCode = "SUPERVISOR_NOT_FOUND"
	ErrCodePositionNotFound       ErrorCode = "POSITION_NOT_FOUND"
	ErrCodeDepartmentNotFound     ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeRoleNotFound           ErrorCode = "ROLE_NOT_FOUND"
	ErrCodePermissionNotFound     ErrorCode = "PERMISSION_NOT_FOUND"
	ErrCodeUserRoleNotFound       ErrorCode = "USER_ROLE_NOT_FOUND"
	ErrCodeRolePermissionNotFound ErrorCode = "ROLE_PERMISSION_NOT_FOUND"

	ErrCodeDuplicateEmail      ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeDuplicateAssignment ErrorCode = "DUPLICATE_ASSIGNMENT"
	ErrCodeDuplicateName       ErrorCode = "DUPLICATE_NAME"
	ErrCodeResourceInUse       ErrorCode = "RESOURCE_IN_USE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    FieldErrors `json:"errors,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

// FieldErrors maps a field path such as "body.email" to its message.
type FieldErrors map[string]string

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins field messages in a stable order.
func (e *AppError) GetDetailedMessage() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	messages := make([]string, len(keys))
	for i, k := range keys {
		messages[i] = e.Details[k]
	}
	return strings.Join(messages, "; ")
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches app errors by type and code so wrapped copies of a sentinel
// still compare equal to it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy carrying cause; sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy carrying field-level details.
func (e *AppError) WithDetails(details FieldErrors) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    FieldErrors{field: message},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrInvalidBody = NewValidationError("Invalid request body", ErrCodeInvalidBody)
	ErrInvalidID   = NewValidationError("Invalid id", ErrCodeInvalidID)

	ErrInvalidCredentials      = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive            = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken            = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired            = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrUnauthenticated         = NewUnauthorizedError("Authentication required", ErrCodeUnauthenticated)
	ErrInsufficientPermissions = NewForbiddenError("Forbidden: insufficient permissions", ErrCodeInsufficientPermissions)

	ErrUserNotFound           = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrSupervisorNotFound     = NewNotFoundError("Supervisor not found", ErrCodeSupervisorNotFound)
	ErrPositionNotFound       = NewNotFoundError("Position not found", ErrCodePositionNotFound)
	ErrDepartmentNotFound     = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrRoleNotFound           = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrPermissionNotFound     = NewNotFoundError("Permission not found", ErrCodePermissionNotFound)
	ErrUserRoleNotFound       = NewNotFoundError("User role not found", ErrCodeUserRoleNotFound)
	ErrRolePermissionNotFound = NewNotFoundError("Role permission not found", ErrCodeRolePermissionNotFound)

	ErrDuplicateEmail      = NewConflictError("Email is already registered", ErrCodeDuplicateEmail)
	ErrDuplicateAssignment = NewConflictError("Assignment already exists", ErrCodeDuplicateAssignment)
	ErrDuplicateName       = NewConflictError("Name is already taken", ErrCodeDuplicateName)
	ErrResourceInUse       = NewConflictError("Resource is still referenced", ErrCodeResourceInUse)
)

// IsAppError unwraps err looking for an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
