package lightstreamer

import "sync"

// Mode selects how the server schedules updates for a subscription.
type Mode string

const (
	// ModeMerge coalesces intermediate updates; only the latest value per
	// field is guaranteed to be delivered.
	ModeMerge Mode = "MERGE"
	// ModeDistinct delivers every event without coalescing.
	ModeDistinct Mode = "DISTINCT"
	// ModeRaw delivers updates as produced, without snapshot management.
	ModeRaw Mode = "RAW"
)

// ItemUpdate is one decoded update for a single item of a subscription.
// Fields holds the full known state of the item; ChangedFields only the
// fields this update touched. A field absent from Fields has no value on
// the server side.
type ItemUpdate struct {
	ItemName      string
	ItemPos       int
	Fields        map[string]string
	ChangedFields map[string]string
	Snapshot      bool
}

// SubscriptionListener receives the lifecycle events of one subscription.
// Callbacks run on the session goroutine; implementations must not block.
type SubscriptionListener interface {
	OnSubscription()
	OnItemUpdate(update ItemUpdate)
	OnSubscriptionError(code int, message string)
}

// Subscription describes a set of items and fields to receive from the
// server. Configure it fully before handing it to Client.Subscribe.
type Subscription struct {
	mode        Mode
	items       []string
	fields      []string
	dataAdapter string
	snapshot    bool

	mu        sync.Mutex
	listeners []SubscriptionListener
	state     []map[string]string
	seeded    []bool
}

// NewSubscription creates a subscription for the given items and fields.
func NewSubscription(mode Mode, items, fields []string) *Subscription {
	return &Subscription{
		mode:   mode,
		items:  append([]string(nil), items...),
		fields: append([]string(nil), fields...),
		state:  make([]map[string]string, len(items)),
		seeded: make([]bool, len(items)),
	}
}

// SetDataAdapter selects the data adapter serving this subscription.
func (s *Subscription) SetDataAdapter(adapter string) {
	s.dataAdapter = adapter
}

// SetRequestedSnapshot asks the server for the current state of each item
// before live updates.
func (s *Subscription) SetRequestedSnapshot(snapshot bool) {
	s.snapshot = snapshot
}

// AddListener registers a listener for this subscription's events.
func (s *Subscription) AddListener(l SubscriptionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Subscription) Mode() Mode              { return s.mode }
func (s *Subscription) Items() []string         { return s.items }
func (s *Subscription) Fields() []string        { return s.fields }
func (s *Subscription) DataAdapter() string     { return s.dataAdapter }
func (s *Subscription) RequestedSnapshot() bool { return s.snapshot }

func (s *Subscription) notifySubscribed() {
	s.mu.Lock()
	listeners := append([]SubscriptionListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l.OnSubscription()
	}
}

func (s *Subscription) notifyError(code int, message string) {
	s.mu.Lock()
	listeners := append([]SubscriptionListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l.OnSubscriptionError(code, message)
	}
}

// applyPatches merges one decoded update frame into the item state and
// notifies listeners. itemPos is 1-based as on the wire. The first update an
// item receives is its snapshot when one was requested.
func (s *Subscription) applyPatches(itemPos int, patches []fieldPatch) error {
	if itemPos < 1 || itemPos > len(s.items) {
		return &ProtocolError{Reason: "item position out of range"}
	}
	if len(patches) != len(s.fields) {
		return &ProtocolError{Reason: "field count mismatch"}
	}

	s.mu.Lock()
	idx := itemPos - 1
	if s.state[idx] == nil {
		s.state[idx] = make(map[string]string, len(s.fields))
	}
	current := s.state[idx]

	changed := make(map[string]string)
	for i, p := range patches {
		if !p.set {
			continue
		}
		name := s.fields[i]
		if p.null {
			delete(current, name)
			continue
		}
		current[name] = p.value
		changed[name] = p.value
	}

	fields := make(map[string]string, len(current))
	for k, v := range current {
		fields[k] = v
	}

	snapshot := s.snapshot && !s.seeded[idx]
	s.seeded[idx] = true
	listeners := append([]SubscriptionListener(nil), s.listeners...)
	s.mu.Unlock()

	update := ItemUpdate{
		ItemName:      s.items[idx],
		ItemPos:       itemPos,
		Fields:        fields,
		ChangedFields: changed,
		Snapshot:      snapshot,
	}
	for _, l := range listeners {
		l.OnItemUpdate(update)
	}
	return nil
}
