package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared across layers. Wrap them with %w and match with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidRecord       = errors.New("invalid activity record")
	ErrUnauthenticated     = errors.New("missing user identity")
	ErrDatabaseUnavailable = errors.New("database unavailable")
)

type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInvalidRecord   Code = "INVALID_RECORD"
	CodeDatabase        Code = "DATABASE_ERROR"
	CodeUnknown         Code = "UNKNOWN_ERROR"
)

// AppError carries a client-facing message alongside the underlying cause.
type AppError struct {
	Code    Code
	Message string
	Op      string
	Cause   error
}

func (e *AppError) Error() string {
	prefix := ""
	if e.Op != "" {
		prefix = "[" + e.Op + "] "
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %s (caused by: %v)", prefix, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidRecord:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func New(code Code, message, op string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Op: op, Cause: cause}
}

// Classify turns any error into an AppError, keeping an existing AppError as is.
// fallback is the client message used for errors that match no sentinel.
func Classify(err error, op, fallback string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return New(CodeValidation, err.Error(), op, err)
	case errors.Is(err, ErrUnauthenticated):
		return New(CodeUnauthenticated, err.Error(), op, err)
	case errors.Is(err, ErrNotFound):
		return New(CodeNotFound, err.Error(), op, err)
	case errors.Is(err, ErrConflict):
		return New(CodeConflict, err.Error(), op, err)
	case errors.Is(err, ErrInvalidRecord):
		return New(CodeInvalidRecord, fallback, op, err)
	case errors.Is(err, ErrDatabaseUnavailable):
		return New(CodeDatabase, fallback, op, err)
	default:
		return New(CodeUnknown, fallback, op, err)
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
