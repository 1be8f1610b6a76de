package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for the failures a caller can see. AI failures are absorbed by
// fallback content and never map to one of these.
var (
	ErrInputRejected   = errors.New("input rejected")
	ErrTooLarge        = errors.New("upload too large")
	ErrExtractionEmpty = errors.New("no readable content")
	ErrInternal        = errors.New("internal error")
)

// StatusClientClosedRequest is reported when the client went away before the
// game was generated. Nothing is written back in that case.
const StatusClientClosedRequest = 499

// AppError carries the HTTP status and the user-facing message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Rejected is shorthand for a 400 caused by bad input.
func Rejected(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrInputRejected)
}

// MapError maps any error to an AppError with an HTTP status.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInputRejected):
		return New(http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, ErrTooLarge):
		return New(http.StatusRequestEntityTooLarge, "File too large", err)
	case errors.Is(err, ErrExtractionEmpty):
		return New(http.StatusBadRequest, "Could not extract any text from the document. Please ensure it contains readable content.", err)
	case errors.Is(err, context.Canceled):
		return New(StatusClientClosedRequest, "Request canceled", err)
	}

	return New(http.StatusInternalServerError, fmt.Sprintf("An unexpected error occurred: %v", err), errors.Join(ErrInternal, err))
}
