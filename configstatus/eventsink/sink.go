// Package eventsink provides the event publication port consumed by the
// status service, plus a NATS-backed implementation. Publication is
// fire-and-forget: no acknowledgement is awaited and failed publishes are
// not retried.
package eventsink

import (
	"time"

	"github.com/fatihboy/smarthome/configstatus"
)

// EventType identifies config status info events on the wire
const EventType = "ConfigStatusInfoEvent"

// Sink publishes a recomputed status info under a topic
type Sink interface {
	Publish(topic string, info *configstatus.Info) error
}

// InfoEvent is the wire envelope for a published status info
type InfoEvent struct {
	EventID   string                 `json:"eventId"`
	Type      string                 `json:"type"`
	Topic     string                 `json:"topic"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   []configstatus.Message `json:"payload"`
}
