package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrUnauthenticated  = fmt.Errorf("missing or invalid identity token")
	ErrForbidden        = fmt.Errorf("operation not allowed for this identity")
	ErrBanned           = fmt.Errorf("account is banned")
	ErrAlreadyStreaming = fmt.Errorf("host already has a live stream")
	ErrStreamNotFound   = fmt.Errorf("stream not found")
	ErrStreamEnded      = fmt.Errorf("stream is no longer live")
	ErrUserNotFound     = fmt.Errorf("user not found")
	ErrSessionStalled   = fmt.Errorf("session send buffer full")
	ErrSessionClosed    = fmt.Errorf("session already closed")
	ErrInvalidPayload   = fmt.Errorf("invalid request payload")
)

// MapToHTTPStatus translates domain sentinels into the status codes
// the REST layer answers with. Unknown errors are treated as internal.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrBanned):
		return http.StatusForbidden
	case errors.Is(err, ErrStreamNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyStreaming):
		return http.StatusConflict
	case errors.Is(err, ErrStreamEnded):
		return http.StatusGone
	case errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
