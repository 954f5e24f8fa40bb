package eventsink

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/fatihboy/smarthome/configstatus"
	"github.com/fatihboy/smarthome/errors"
)

// ConnectionStatus represents the state of the NATS connection
type ConnectionStatus int

// Possible connection statuses
const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnected
	StatusReconnecting
	StatusClosed
)

// String returns the string representation of ConnectionStatus
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// NATSSink publishes status info events over a core NATS connection.
// Event topics map directly to NATS subjects with "/" replaced by ".".
type NATSSink struct {
	url    string
	name   string
	logger *slog.Logger

	maxReconnects int
	reconnectWait time.Duration
	drainTimeout  time.Duration

	mu     sync.RWMutex
	conn   *nats.Conn
	status ConnectionStatus
}

// NATSOption is a functional option for configuring the sink
type NATSOption func(*NATSSink)

// WithName sets the connection name reported to the NATS server
func WithName(name string) NATSOption {
	return func(s *NATSSink) {
		s.name = name
	}
}

// WithLogger sets the logger used for connection events
func WithLogger(logger *slog.Logger) NATSOption {
	return func(s *NATSSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxReconnects sets the maximum number of reconnection attempts (-1 for infinite)
func WithMaxReconnects(max int) NATSOption {
	return func(s *NATSSink) {
		s.maxReconnects = max
	}
}

// WithReconnectWait sets the wait time between reconnection attempts
func WithReconnectWait(d time.Duration) NATSOption {
	return func(s *NATSSink) {
		s.reconnectWait = d
	}
}

// WithDrainTimeout sets the timeout for draining the connection on Close
func WithDrainTimeout(d time.Duration) NATSOption {
	return func(s *NATSSink) {
		s.drainTimeout = d
	}
}

// NewNATSSink creates a sink for the given NATS server URL. Connect must be
// called before Publish.
func NewNATSSink(url string, opts ...NATSOption) (*NATSSink, error) {
	if url == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "NATSSink", "NewNATSSink", "url validation")
	}

	sink := &NATSSink{
		url:           url,
		name:          "configstatus-sink",
		logger:        slog.Default(),
		maxReconnects: -1,
		reconnectWait: 2 * time.Second,
		drainTimeout:  5 * time.Second,
		status:        StatusDisconnected,
	}

	for _, opt := range opts {
		opt(sink)
	}

	return sink, nil
}

// Connect establishes the NATS connection
func (s *NATSSink) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil && s.conn.IsConnected() {
		return nil
	}

	conn, err := nats.Connect(s.url,
		nats.Name(s.name),
		nats.MaxReconnects(s.maxReconnects),
		nats.ReconnectWait(s.reconnectWait),
		nats.DrainTimeout(s.drainTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			s.setStatus(StatusReconnecting)
			s.logger.Warn("NATS connection lost", "url", s.url, "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			s.setStatus(StatusConnected)
			s.logger.Info("NATS connection restored", "url", s.url)
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			s.setStatus(StatusClosed)
		}),
	)
	if err != nil {
		return errors.WrapTransient(err, "NATSSink", "Connect", "NATS connection")
	}

	s.conn = conn
	s.status = StatusConnected
	s.logger.Debug("Connected to NATS", "url", s.url, "name", s.name)
	return nil
}

// Publish implements the Sink interface. The info payload is wrapped in an
// InfoEvent envelope and published as JSON.
func (s *NATSSink) Publish(topic string, info *configstatus.Info) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return errors.WrapTransient(errors.ErrNoConnection, "NATSSink", "Publish", "connection check")
	}

	event := InfoEvent{
		EventID:   uuid.NewString(),
		Type:      EventType,
		Topic:     topic,
		Timestamp: time.Now().UTC(),
		Payload:   info.Messages(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errors.WrapInvalid(err, "NATSSink", "Publish", "event serialization")
	}

	if err := conn.Publish(subjectFromTopic(topic), data); err != nil {
		return errors.WrapTransient(err, "NATSSink", "Publish", "event publication")
	}

	s.logger.Debug("Published config status event",
		"topic", topic, "event_id", event.EventID, "messages", len(event.Payload))
	return nil
}

// Status returns the current connection status
func (s *NATSSink) Status() ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Close drains and closes the NATS connection
func (s *NATSSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return
	}

	if err := s.conn.Drain(); err != nil {
		s.logger.Warn("NATS drain failed, closing hard", "error", err)
		s.conn.Close()
	}
	s.conn = nil
	s.status = StatusClosed
}

// setStatus updates the connection status from NATS callbacks
func (s *NATSSink) setStatus(status ConnectionStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// subjectFromTopic converts an event topic to a NATS subject. Topic segments
// are "/"-separated; NATS subjects use ".". Entity ids may contain dots, so
// this mapping is one-way.
func subjectFromTopic(topic string) string {
	subject := make([]byte, len(topic))
	for i := 0; i < len(topic); i++ {
		if topic[i] == '/' {
			subject[i] = '.'
		} else {
			subject[i] = topic[i]
		}
	}
	return string(subject)
}
