package common

import (
	"errors"
	"net/http"
)

// AppError is an error that knows how it is rendered: an API code, an HTTP
// status and optional details placed in the error body.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to reach the domain error underneath.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Status is the HTTP status to send. Zero means 400.
func (e *AppError) Status() int {
	if e.HTTPStatus == 0 {
		return http.StatusBadRequest
	}
	return e.HTTPStatus
}

// ErrorCode is the API code to send. Empty means BAD_REQUEST.
func (e *AppError) ErrorCode() string {
	if e.Code == "" {
		return "BAD_REQUEST"
	}
	return e.Code
}

// WithDetails returns a copy of e carrying details, such as per-field
// validation messages.
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var target *AppError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsAppError reports whether err already carries its HTTP rendering.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}
