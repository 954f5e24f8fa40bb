package configstatus

// Info is the ordered aggregate of status messages produced by exactly one
// lookup. It is append-only while the status service builds it and must not
// be mutated once returned to a caller. Info carries no entity identity;
// identity is implicit in the lookup that produced it.
type Info struct {
	messages []Message
}

// NewInfo creates an empty status info aggregate
func NewInfo() *Info {
	return &Info{}
}

// Add appends a single message, preserving insertion order
func (i *Info) Add(m Message) {
	i.messages = append(i.messages, m)
}

// AddAll appends all given messages in order
func (i *Info) AddAll(msgs ...Message) {
	i.messages = append(i.messages, msgs...)
}

// Messages returns a copy of the messages in insertion order
func (i *Info) Messages() []Message {
	out := make([]Message, len(i.messages))
	copy(out, i.messages)
	return out
}

// Len returns the number of messages
func (i *Info) Len() int {
	return len(i.messages)
}
