// Package configstatus defines the data model and capability contracts for
// configuration status aggregation: status messages, the per-lookup status
// info aggregate, the provider capability, and the change-notification
// callback.
package configstatus

import (
	"fmt"
)

// Severity represents the type of a configuration status message
type Severity string

const (
	// SeverityInformation represents an informational finding
	SeverityInformation Severity = "INFORMATION"
	// SeverityWarning represents a finding the user should review
	SeverityWarning Severity = "WARNING"
	// SeverityError represents an invalid configuration value
	SeverityError Severity = "ERROR"
	// SeverityPending represents a configuration change not yet applied
	SeverityPending Severity = "PENDING"
)

// Valid reports whether the severity is one of the defined values
func (s Severity) Valid() bool {
	switch s {
	case SeverityInformation, SeverityWarning, SeverityError, SeverityPending:
		return true
	}
	return false
}

// Message represents one diagnostic finding about a single configuration
// parameter of an entity. Messages are value types and are treated as
// immutable once constructed.
//
// MessageKey identifies a translatable text in the owning provider's
// translation namespace; Arguments are substituted into the translated
// template. A message without a key carries no text and is delivered
// unchanged. Text is populated by the status service after translation and
// is empty on raw provider output.
type Message struct {
	ParameterName string   `json:"parameterName"`
	Severity      Severity `json:"type"`
	MessageKey    string   `json:"-"`
	Arguments     []any    `json:"-"`
	Text          string   `json:"message,omitempty"`
	StatusCode    *int     `json:"statusCode,omitempty"`
}

// NewMessage creates a raw, untranslated message for the given parameter
func NewMessage(parameterName string, severity Severity, messageKey string, args ...any) Message {
	return Message{
		ParameterName: parameterName,
		Severity:      severity,
		MessageKey:    messageKey,
		Arguments:     args,
	}
}

// WithStatusCode returns a copy of the message carrying the given status code
func (m Message) WithStatusCode(code int) Message {
	m.StatusCode = &code
	return m
}

// Translated returns a copy of the message with resolved text and the
// translation inputs cleared
func (m Message) Translated(text string) Message {
	m.Text = text
	m.MessageKey = ""
	m.Arguments = nil
	return m
}

// String returns a compact representation for logging
func (m Message) String() string {
	return fmt.Sprintf("%s[%s]: %s", m.ParameterName, m.Severity, m.Text)
}
