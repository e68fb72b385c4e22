package fluency

// Message is a view of one message inside a Bundle. It is valid only while
// the bundle is open.
type Message struct {
	bundle     *Bundle
	slot       int
	generation uint64
}

// Attribute is a view of one attribute of a Message.
type Attribute struct {
	message *Message
	index   int
}

func (m *Message) resolve() (*MessageEntry, error) {
	if m == nil || m.bundle == nil {
		return nil, ErrNilMessage
	}
	if m.bundle.closed || m.bundle.generation != m.generation || m.slot >= len(m.bundle.arena) {
		return nil, ErrStaleHandle
	}
	entry := m.bundle.arena[m.slot].message
	if entry == nil {
		return nil, ErrStaleHandle
	}
	return entry, nil
}

// Bundle returns the owning bundle.
func (m *Message) Bundle() *Bundle {
	if m == nil {
		return nil
	}
	return m.bundle
}

// Valid reports whether the owning bundle is still open.
func (m *Message) Valid() bool {
	_, err := m.resolve()
	return err == nil
}

// ID returns the message identifier, or "" for a stale view.
func (m *Message) ID() string {
	entry, err := m.resolve()
	if err != nil {
		return ""
	}
	return entry.ID
}

// Value returns the message pattern; nil when the message only has
// attributes.
func (m *Message) Value() *Pattern {
	entry, err := m.resolve()
	if err != nil {
		return nil
	}
	return entry.Value
}

// Comment returns the comment written directly above the message.
func (m *Message) Comment() string {
	entry, err := m.resolve()
	if err != nil {
		return ""
	}
	return entry.Comment
}

// Attribute returns the attribute id.
func (m *Message) Attribute(id string) (*Attribute, bool) {
	entry, err := m.resolve()
	if err != nil {
		return nil, false
	}
	for i, attr := range entry.Attributes {
		if attr.ID == id {
			return &Attribute{message: m, index: i}, true
		}
	}
	return nil, false
}

// Attributes returns every attribute in source order.
func (m *Message) Attributes() []*Attribute {
	entry, err := m.resolve()
	if err != nil {
		return nil
	}
	out := make([]*Attribute, len(entry.Attributes))
	for i := range entry.Attributes {
		out[i] = &Attribute{message: m, index: i}
	}
	return out
}

func (a *Attribute) resolve() (*AttributeEntry, error) {
	if a == nil {
		return nil, ErrNilMessage
	}
	entry, err := a.message.resolve()
	if err != nil {
		return nil, err
	}
	if a.index < 0 || a.index >= len(entry.Attributes) {
		return nil, ErrStaleHandle
	}
	return entry.Attributes[a.index], nil
}

// Message returns the owning message view.
func (a *Attribute) Message() *Message {
	if a == nil {
		return nil
	}
	return a.message
}

// ID returns the attribute identifier, or "" for a stale view.
func (a *Attribute) ID() string {
	entry, err := a.resolve()
	if err != nil {
		return ""
	}
	return entry.ID
}

// Value returns the attribute pattern.
func (a *Attribute) Value() *Pattern {
	entry, err := a.resolve()
	if err != nil {
		return nil
	}
	return entry.Value
}
