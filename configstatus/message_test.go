package configstatus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityValid(t *testing.T) {
	assert.True(t, SeverityInformation.Valid())
	assert.True(t, SeverityWarning.Valid())
	assert.True(t, SeverityError.Valid())
	assert.True(t, SeverityPending.Valid())
	assert.False(t, Severity("CRITICAL").Valid())
	assert.False(t, Severity("").Valid())
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("host", SeverityError, "config-status.error.host", "192.0.2.1")

	assert.Equal(t, "host", msg.ParameterName)
	assert.Equal(t, SeverityError, msg.Severity)
	assert.Equal(t, "config-status.error.host", msg.MessageKey)
	assert.Equal(t, []any{"192.0.2.1"}, msg.Arguments)
	assert.Empty(t, msg.Text)
	assert.Nil(t, msg.StatusCode)
}

func TestMessageWithStatusCode(t *testing.T) {
	msg := NewMessage("port", SeverityWarning, "").WithStatusCode(42)

	require.NotNil(t, msg.StatusCode)
	assert.Equal(t, 42, *msg.StatusCode)

	// Original value semantics: a second code does not alias the first
	other := msg.WithStatusCode(7)
	assert.Equal(t, 42, *msg.StatusCode)
	assert.Equal(t, 7, *other.StatusCode)
}

func TestMessageTranslated(t *testing.T) {
	raw := NewMessage("host", SeverityError, "k1", "x")
	translated := raw.Translated("bad value: x")

	assert.Equal(t, "bad value: x", translated.Text)
	assert.Empty(t, translated.MessageKey)
	assert.Nil(t, translated.Arguments)

	// Raw message untouched
	assert.Equal(t, "k1", raw.MessageKey)
	assert.Empty(t, raw.Text)
}

func TestMessageJSONShape(t *testing.T) {
	msg := NewMessage("host", SeverityError, "k1", "x").
		WithStatusCode(7).
		Translated("bad value: x")

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "host", decoded["parameterName"])
	assert.Equal(t, "ERROR", decoded["type"])
	assert.Equal(t, "bad value: x", decoded["message"])
	assert.Equal(t, float64(7), decoded["statusCode"])

	// Translation inputs never leak onto the wire
	assert.NotContains(t, decoded, "messageKey")
	assert.NotContains(t, decoded, "arguments")
}

func TestInfoOrderingAndCopy(t *testing.T) {
	info := NewInfo()
	assert.Equal(t, 0, info.Len())

	info.Add(NewMessage("a", SeverityInformation, ""))
	info.AddAll(
		NewMessage("b", SeverityWarning, ""),
		NewMessage("c", SeverityError, ""),
	)

	require.Equal(t, 3, info.Len())
	msgs := info.Messages()
	assert.Equal(t, "a", msgs[0].ParameterName)
	assert.Equal(t, "b", msgs[1].ParameterName)
	assert.Equal(t, "c", msgs[2].ParameterName)

	// Mutating the returned slice must not affect the aggregate
	msgs[0].ParameterName = "mutated"
	assert.Equal(t, "a", info.Messages()[0].ParameterName)
}

func TestChangeSignalTopic(t *testing.T) {
	signal := ChangeSignal{EntityID: "hue:bulb:1"}
	assert.Equal(t, "smarthome/configstatus/hue:bulb:1/status", signal.Topic())
}
