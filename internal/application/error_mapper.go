package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/DanielPopoola/ticketing-payments/internal/domain"
)

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMissingRequiredField),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		return http.StatusConflict

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	// Default to 500
	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		// a bad request keeps the more specific domain code when there is one
		var domainErr *domain.DomainError
		if svcErr.Code == ErrCodeBadRequest && errors.As(err, &domainErr) {
			return domainErr.Code
		}
		return svcErr.Code
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	switch {
	case errors.Is(err, domain.ErrPaymentNotFound):
		return ErrCodeNotFound
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		return ErrCodeConflict
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	}

	return ErrCodeInternal
}

// ToMessage returns the text that is safe to show a caller. Internal
// failures never expose the wrapped cause.
func ToMessage(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		if svcErr.Code == ErrCodeInternal {
			return svcErr.Message
		}
		if svcErr.Err != nil && svcErr.Code == ErrCodeBadRequest {
			return svcErr.Err.Error()
		}
		return svcErr.Message
	}
	if ToHTTPStatus(err) == http.StatusInternalServerError {
		return "An internal error occurred"
	}
	return err.Error()
}
