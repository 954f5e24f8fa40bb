package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.class.String())
		})
	}
}

func TestWrap(t *testing.T) {
	base := stderrors.New("connection refused")
	err := Wrap(base, "NATSSink", "Publish", "event delivery")

	require.Error(t, err)
	assert.Equal(t, "NATSSink.Publish: event delivery failed: connection refused", err.Error())
	assert.True(t, stderrors.Is(err, base))

	assert.Nil(t, Wrap(nil, "NATSSink", "Publish", "event delivery"))
}

func TestWrapInvalid(t *testing.T) {
	err := WrapInvalid(ErrEmptyEntityID, "Service", "ConfigStatus", "entity id validation")
	require.Error(t, err)

	var ce *ClassifiedError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, ErrorInvalid, ce.Class)
	assert.Equal(t, "Service", ce.Component)
	assert.Equal(t, "ConfigStatus", ce.Operation)
	assert.True(t, stderrors.Is(err, ErrEmptyEntityID))

	assert.Nil(t, WrapInvalid(nil, "Service", "ConfigStatus", "entity id validation"))
}

func TestWrapTransient(t *testing.T) {
	err := WrapTransient(ErrSinkUnavailable, "Service", "publishStatus", "event sink lookup")
	require.Error(t, err)

	assert.True(t, IsTransient(err))
	assert.False(t, IsInvalid(err))
	assert.False(t, IsFatal(err))
}

func TestWrapFatal(t *testing.T) {
	err := WrapFatal(stderrors.New("registry cannot be nil"), "Service", "New", "dependency validation")
	require.Error(t, err)

	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrorFatal, Classify(err))
}

func TestClassificationOfSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"empty entity id", ErrEmptyEntityID, ErrorInvalid},
		{"invalid config", ErrInvalidConfig, ErrorInvalid},
		{"missing config", ErrMissingConfig, ErrorInvalid},
		{"sink unavailable", ErrSinkUnavailable, ErrorTransient},
		{"resolver unavailable", ErrResolverUnavailable, ErrorTransient},
		{"no connection", ErrNoConnection, ErrorTransient},
		{"unknown error", stderrors.New("something else"), ErrorTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	inner := WrapInvalid(ErrEmptyEntityID, "Service", "ConfigStatus", "entity id validation")
	outer := fmt.Errorf("lookup aborted: %w", inner)

	assert.True(t, IsInvalid(outer))

	var ce *ClassifiedError
	require.True(t, stderrors.As(outer, &ce))
	assert.Equal(t, ErrorInvalid, ce.Class)
}

func TestClassifiedErrorMessage(t *testing.T) {
	ce := &ClassifiedError{
		Class:   ErrorInvalid,
		Err:     ErrInvalidConfig,
		Message: "custom message",
	}
	assert.Equal(t, "custom message", ce.Error())

	ce.Message = ""
	assert.Equal(t, ErrInvalidConfig.Error(), ce.Error())
}

func TestNilHandling(t *testing.T) {
	assert.False(t, IsInvalid(nil))
	assert.False(t, IsTransient(nil))
	assert.False(t, IsFatal(nil))
	assert.Equal(t, ErrorTransient, Classify(nil))
}
