// Package errors provides the application-wide error framework, distinguishing
// runtime faults from ordinary per-visit unassignment outcomes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an AppError for programmatic handling and HTTP mapping.
type Code string

const (
	// General purpose.
	CodeUnknown       Code = "UNKNOWN"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeTimeout       Code = "TIMEOUT"
	CodeRateLimited   Code = "RATE_LIMITED"
	CodeConflict      Code = "CONFLICT"

	// Routing-solver runtime faults. These are distinct from per-visit
	// unassigned reasons, which are not errors at all.
	CodeMatrixUnavailable       Code = "MATRIX_UNAVAILABLE"
	CodeAvailabilityUnavailable Code = "AVAILABILITY_UNAVAILABLE"
	CodeNoFeasibleSolution      Code = "NO_FEASIBLE_SOLUTION"
	CodeMalformedVisit          Code = "MALFORMED_VISIT"
	CodeMalformedVisitor        Code = "MALFORMED_VISITOR"

	// Data layer.
	CodeDatabaseError  Code = "DATABASE_ERROR"
	CodeValidationFail Code = "VALIDATION_FAILED"
)

// AppError is the application's single error type, carrying enough structure
// to map cleanly onto an HTTP response or a log line.
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New creates an AppError with the HTTP status implied by code.
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap creates an AppError around an existing error.
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidationFail, CodeMalformedVisit, CodeMalformedVisitor:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeMatrixUnavailable, CodeAvailabilityUnavailable:
		return http.StatusBadGateway
	case CodeNoFeasibleSolution:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the Code from err, or CodeUnknown if err is not an AppError.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus extracts the HTTP status from err, defaulting to 500.
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

var (
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrInvalidInput       = New(CodeInvalidInput, "invalid input")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrInternal           = New(CodeInternal, "internal error")
	ErrTimeout            = New(CodeTimeout, "operation timed out")
	ErrMatrixUnavailable  = New(CodeMatrixUnavailable, "distance matrix provider failed")
	ErrAvailabilityFailed = New(CodeAvailabilityUnavailable, "availability provider failed")
)

// InvalidInput builds a field-scoped input error.
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("field '%s' invalid: %s", field, reason))
}

// NotFound builds a resource-not-found error.
func NotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s '%s' not found", resource, id))
}

// MatrixUnavailable wraps a distance matrix provider failure as a runtime fault.
func MatrixUnavailable(cause error) *AppError {
	return Wrap(cause, CodeMatrixUnavailable, "distance matrix provider failed")
}

// AvailabilityUnavailable wraps an availability provider failure as a runtime fault.
func AvailabilityUnavailable(cause error) *AppError {
	return Wrap(cause, CodeAvailabilityUnavailable, "availability provider failed")
}

// MalformedVisit flags an input visit that violates basic structural requirements
// (duration <= 0, invalid coordinates) before the solver ever runs.
func MalformedVisit(visitID, reason string) *AppError {
	return New(CodeMalformedVisit, fmt.Sprintf("visit '%s' malformed: %s", visitID, reason))
}

// MalformedVisitor flags an input visitor that violates basic structural requirements.
func MalformedVisitor(visitorID, reason string) *AppError {
	return New(CodeMalformedVisitor, fmt.Sprintf("visitor '%s' malformed: %s", visitorID, reason))
}

// ValidationErrors accumulates multiple field-level validation failures.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeValidationFail, "validation failed")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
