package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &AppError{Type: ValidationError, Code: CodeInvalidFormat, Message: "bad field", Err: cause}

	assert.Contains(t, err.Error(), "bad field")
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAppError_Is(t *testing.T) {
	err := New(ValidationError, CodeOutOfPhysicalRange, "brix too high")
	target := New(ValidationError, CodeOutOfPhysicalRange, "")

	assert.True(t, errors.Is(err, target))
	assert.False(t, errors.Is(err, New(ValidationError, CodeInvalidFormat, "")))
	assert.False(t, errors.Is(err, New(CalibrationError, CodeOutOfPhysicalRange, "")))
}

func TestAppError_WithContextAndCorrectedValue(t *testing.T) {
	err := New(ValidationError, CodeOutOfPhysicalRange, "gdd out of range").
		WithContext("field", "gdd").
		WithComponent("validation").
		WithCorrectedValue(10000)

	require.NotNil(t, err.CorrectedValue)
	assert.Equal(t, 10000.0, *err.CorrectedValue)
	assert.Equal(t, "validation", err.Component)
	assert.Equal(t, "gdd", err.Context["field"])
}

func TestWrap_PreservesAppErrorTypeAndCode(t *testing.T) {
	inner := New(CalibrationError, "", "store unavailable")
	wrapped := Wrap(inner, "submitting actual")

	assert.Equal(t, CalibrationError, wrapped.Type)
	assert.Contains(t, wrapped.Message, "submitting actual")
	assert.Contains(t, wrapped.Message, "store unavailable")
}

func TestWrap_PlainError(t *testing.T) {
	wrapped := Wrap(errors.New("plain"), "context")
	assert.Equal(t, InternalError, wrapped.Type)
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "whatever"))
}
