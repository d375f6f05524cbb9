// Package apperrors provides the structured error taxonomy used across the
// quality inference engine: every error kind named in the prediction
// pipeline (validation, classification, calibration, prediction, external
// service, configuration) is modeled as a typed, wrappable AppError rather
// than a raw string or a bare stdlib error.
package apperrors

import (
	"fmt"
	"time"
)

// ErrorType groups errors by the subsystem that raised them.
type ErrorType string

const (
	ValidationError       ErrorType = "validation"
	ClassificationError   ErrorType = "classification"
	CalibrationError      ErrorType = "calibration"
	PredictionError       ErrorType = "prediction"
	ExternalServiceError  ErrorType = "external_service"
	ConfigError           ErrorType = "config"
	InternalError         ErrorType = "internal"
)

// Validation error codes, matching the kinds named in the error-handling
// design: missing fields, malformed input, out-of-range values.
const (
	CodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	CodeInvalidFormat        = "INVALID_FORMAT"
	CodeOutOfPhysicalRange   = "OUT_OF_PHYSICAL_RANGE"
	CodeInconsistentData     = "INCONSISTENT_DATA"
	CodeImpossibleValue      = "IMPOSSIBLE_VALUE"
	CodeUnknownCategory      = "UNKNOWN_CATEGORY"
)

// AppError is a structured, wrappable application error carrying the kind,
// a machine-readable code, free-form context, and the originating
// component name.
type AppError struct {
	Err       error
	Message   string
	Code      string
	Type      ErrorType
	Context   map[string]any
	Timestamp time.Time
	Component string

	// CorrectedValue carries the clamped replacement value for
	// OUT_OF_PHYSICAL_RANGE errors, so a caller can choose to clamp instead
	// of rejecting the input outright.
	CorrectedValue *float64
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is compares two AppErrors by type and code, so callers can match with
// errors.Is(err, apperrors.New(apperrors.ValidationError, apperrors.CodeInvalidFormat, "")).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

func (e *AppError) WithCorrectedValue(v float64) *AppError {
	e.CorrectedValue = &v
	return e
}

// New creates a fresh AppError of the given type and code.
func New(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:      errType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap attaches a message to an existing error, preserving an AppError's
// type/code if the wrapped error already is one.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Err:       appErr.Err,
			Message:   fmt.Sprintf("%s: %s", message, appErr.Message),
			Code:      appErr.Code,
			Type:      appErr.Type,
			Context:   appErr.Context,
			Component: appErr.Component,
			Timestamp: time.Now(),
		}
	}
	return &AppError{
		Err:       err,
		Message:   message,
		Type:      InternalError,
		Timestamp: time.Now(),
	}
}
