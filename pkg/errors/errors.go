package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
)

// Relationship conflict codes
const (
	ErrCodeDuplicatePending = "DUPLICATE_PENDING"
	ErrCodeAlreadyFriends   = "ALREADY_FRIENDS"
	ErrCodeSelfRequest      = "SELF_REQUEST"

	// ErrCodePartialAccept means the accept flow could not record both the
	// friendship and the request transition. Nothing was committed.
	ErrCodePartialAccept = "PARTIAL_ACCEPT"
)

// CodeOf returns the code of the first AppError in err's chain, or
// ErrCodeInternalError for foreign errors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// IsConflict reports whether err is one of the relationship conflicts.
func IsConflict(err error) bool {
	switch CodeOf(err) {
	case ErrCodeDuplicatePending, ErrCodeAlreadyFriends, ErrCodeSelfRequest, ErrCodeAlreadyExists:
		return true
	}
	return false
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return "unexpected error"
}

func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case "":
		return http.StatusOK
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeDuplicatePending, ErrCodeAlreadyFriends, ErrCodeSelfRequest, ErrCodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
