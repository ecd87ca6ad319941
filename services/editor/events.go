package editor

// EventType identifies a structural change on the live graph.
type EventType string

const (
	EventNodeAdded      EventType = "node_added"
	EventNodeRemoved    EventType = "node_removed"
	EventEdgeAdded      EventType = "edge_added"
	EventEdgeRemoved    EventType = "edge_removed"
	EventNodeMoved      EventType = "node_moved"
	EventDocumentLoaded EventType = "document_loaded"
)

// Event is one structural change notification. NodeID is set for node
// events, From/To for edge events. Events are not raised while the adapter
// is loading a document; a full load is observed only as the single
// EventDocumentLoaded transition.
type Event struct {
	Type   EventType `json:"type"`
	NodeID string    `json:"node_id,omitempty"`
	From   string    `json:"from,omitempty"`
	To     string    `json:"to,omitempty"`
}

// Bus delivers structural events to subscribers. Publish never blocks: a
// subscriber that cannot keep up misses events rather than stalling editing.
type Bus struct {
	subscribers []chan<- Event
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subscribers: make([]chan<- Event, 0)}
}

// Subscribe adds a subscriber channel.
func (b *Bus) Subscribe(ch chan<- Event) {
	b.subscribers = append(b.subscribers, ch)
}

// Publish sends an event to all subscribers, skipping any that are full.
func (b *Bus) Publish(event Event) {
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
