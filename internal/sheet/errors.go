package sheet

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes record store failures.
type ErrorCode string

const (
	// ErrCodeFetchFailed indicates the full-sequence load failed.
	ErrCodeFetchFailed ErrorCode = "FETCH_FAILED"

	// ErrCodeUpdateFailed indicates a status update was not persisted.
	ErrCodeUpdateFailed ErrorCode = "UPDATE_FAILED"
)

// Error is returned by Client for every failed request.
type Error struct {
	// Code identifies the failed operation.
	Code ErrorCode

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying transport or decode error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Code, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Code, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return string(e.Code)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsFetchFailure reports whether err is a failed full-sequence load.
func IsFetchFailure(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeFetchFailed
	}
	return false
}

// IsUpdateFailure reports whether err is a failed status update.
func IsUpdateFailure(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeUpdateFailed
	}
	return false
}

func fetchError(status int, err error) *Error {
	return &Error{Code: ErrCodeFetchFailed, StatusCode: status, Err: err}
}

func updateError(status int, err error) *Error {
	return &Error{Code: ErrCodeUpdateFailed, StatusCode: status, Err: err}
}
