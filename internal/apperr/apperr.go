package apperr

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

// Error is an application error carrying the HTTP status code it should be
// reported with at the request boundary. Services raise these at the point
// of detection; handlers convert them to JSON error responses.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

func BadGateway(message string) *Error {
	return New(http.StatusBadGateway, message)
}

// StatusOf maps an error to the HTTP status code it should produce.
// Unwraps *Error anywhere in the chain; a bare mongo.ErrNoDocuments is
// treated as NotFound. Anything else is an internal error.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
