package middleware

import (
	"net/http"
	"time"
)

func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// http.TimeoutHandler writes the body verbatim, so it is pre-encoded in
	// the disk API's envelope shape.
	message := `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"The disk API did not answer in time"}}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
