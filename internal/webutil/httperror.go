package webutil

import (
	"fmt"
	"net/http"
	"strings"
)

// Error titles, one per kind of failure.
const (
	TitleValidation  = "Validation Error"
	TitleConflict    = "Conflict"
	TitleNotFound    = "Not Found"
	TitleAuth        = "Unauthorized"
	TitleBadRequest  = "Bad Request"
	TitleRateLimited = "Too Many Requests"
	TitleInternal    = "Internal Server Error"
)

const msgInternal = "Internal server error"

// HTTPError is an error with a status code and a client-facing message.
type HTTPError struct {
	cause    error
	Code     int
	Title    string
	Message  string
	Messages []string
}

func (e *HTTPError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.cause
}

// ErrValidation reports every violation; the message joins them.
func ErrValidation(messages []string) *HTTPError {
	return &HTTPError{
		Code:     http.StatusUnprocessableEntity,
		Title:    TitleValidation,
		Message:  strings.Join(messages, ", "),
		Messages: messages,
	}
}

func ErrConflict(message string, cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: http.StatusUnprocessableEntity, Title: TitleConflict, Message: message}
}

func ErrNotFound(message string) *HTTPError {
	return &HTTPError{Code: http.StatusNotFound, Title: TitleNotFound, Message: message}
}

// ErrUnprocessable is a 422 carrying a kind other than validation, such as
// a failed login.
func ErrUnprocessable(title, message string) *HTTPError {
	return &HTTPError{Code: http.StatusUnprocessableEntity, Title: title, Message: message}
}

func ErrUnauthorized(message string) *HTTPError {
	return &HTTPError{Code: http.StatusUnauthorized, Title: TitleAuth, Message: message}
}

// ErrInvalidToken is the 400 returned when a bearer token fails verification.
func ErrInvalidToken(message string, cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: http.StatusBadRequest, Title: TitleAuth, Message: message}
}

func ErrBadRequest(message string, cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: http.StatusBadRequest, Title: TitleBadRequest, Message: message}
}

func ErrTooManyRequests() *HTTPError {
	return &HTTPError{Code: http.StatusTooManyRequests, Title: TitleRateLimited, Message: "Too many requests, try again later"}
}

func ErrInternal(cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: http.StatusInternalServerError, Title: TitleInternal, Message: msgInternal}
}

func ErrUnavailable(cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: http.StatusServiceUnavailable, Title: "Service Unavailable", Message: "Service unavailable"}
}
