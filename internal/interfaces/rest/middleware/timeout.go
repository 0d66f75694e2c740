package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest"
)

const timeoutCode = "TIMEOUT"

// Timeout bounds each request. The handler's context is cancelled when the
// deadline passes and the caller gets 503 with the error envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(rest.ErrorResponse{
		Success: false,
		Error: rest.ErrorDetail{
			Code:    timeoutCode,
			Message: "Request timeout",
		},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
