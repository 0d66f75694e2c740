package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

func NewNotFoundError(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    message,
		HTTPStatus: http.StatusNotFound,
		Err:        err,
	}
}

func NewBadRequestError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeBadRequest,
		Message:    "Bad request",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewConflictError is the idempotency-key race signal. The payment service
// recovers from it; it only escapes when the winning record cannot be read.
func NewConflictError(key string, err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeConflict,
		Message:    fmt.Sprintf("idempotency key %q was claimed concurrently", key),
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

func NewUnauthorizedError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeUnauthorized,
		Message:    "Missing or invalid bearer token",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// IsNotFound reports whether err is a NOT_FOUND service error.
func IsNotFound(err error) bool {
	svcErr, ok := IsServiceError(err)
	return ok && svcErr.Code == ErrCodeNotFound
}

// IsBadRequest reports whether err is a BAD_REQUEST service error.
func IsBadRequest(err error) bool {
	svcErr, ok := IsServiceError(err)
	return ok && svcErr.Code == ErrCodeBadRequest
}
