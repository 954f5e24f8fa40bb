package configstatus

// TopicPrefix is the leading segment of all config status event topics
const TopicPrefix = "smarthome/configstatus"

// ChangeSignal is an ephemeral notification that a provider's status for an
// entity may have changed. It is not persisted; each signal triggers at most
// one recomputation and rapid duplicate signals are not coalesced.
type ChangeSignal struct {
	EntityID string
}

// Topic returns the event topic the recomputed status is published under
func (s ChangeSignal) Topic() string {
	return TopicPrefix + "/" + s.EntityID + "/status"
}

// Provider is the capability implemented by every configuration status
// source. A provider owns status knowledge for some dynamic subset of
// entities; ownership is answered per call and never cached.
type Provider interface {
	// SupportsEntity reports whether this provider owns config status
	// knowledge for the given entity
	SupportsEntity(entityID string) bool

	// ConfigStatus returns the provider's current raw status messages.
	// A nil return signals the provider failed to answer; an empty,
	// non-nil slice is a valid "nothing to report" result. The two are
	// treated as different outcomes by the status service.
	ConfigStatus() []Message

	// Namespace identifies the provider's translation bundle. Message keys
	// are resolved within this namespace, so colliding keys across
	// providers are safe.
	Namespace() string

	// SetCallback hands the provider the callback it invokes to signal a
	// status change. A nil callback clears the binding.
	SetCallback(cb Callback)
}

// Callback is the change-notification entry point handed to providers when
// they are registered
type Callback interface {
	// NotifyChanged signals that the status for the entity named by the
	// signal may have changed. Implementations return immediately;
	// recomputation happens out-of-line.
	NotifyChanged(signal ChangeSignal)
}
