package engine

import "sync"

// ConnID uniquely identifies a live transport connection. One user may
// appear behind several connection IDs over time (reconnects).
type ConnID string

// ConnHandle is the transport-neutral interface for pushing events to a
// connected client. It lets the engine broadcast without depending on the
// websocket layer.
type ConnHandle interface {
	// ID returns the unique connection identifier.
	ID() ConnID

	// Send delivers an event to the connection asynchronously.
	// Must be non-blocking; implementations should use buffered channels.
	Send(evt Event)

	// Done returns a channel that closes when the connection ends.
	Done() <-chan struct{}
}

// ChannelConn is a ConnHandle implementation backed by a buffered channel.
// The websocket write pump drains Events() and serializes to the wire.
type ChannelConn struct {
	id       ConnID
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelConn creates a channel-backed connection handle.
// bufferSize controls how many events can queue before old ones drop.
func NewChannelConn(id ConnID, bufferSize int) *ChannelConn {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelConn{
		id:     id,
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the connection identifier.
func (c *ChannelConn) ID() ConnID {
	return c.id
}

// Send queues an event for the connection. A slow consumer never blocks
// the engine: when the buffer is full the oldest event is dropped. Late
// joiners always receive a full snapshot, so a dropped event is only a
// transiently stale view.
func (c *ChannelConn) Send(evt Event) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.events <- evt:
	default:
		select {
		case <-c.events:
		default:
		}
		select {
		case c.events <- evt:
		default:
		}
	}
}

// Events returns the channel the write pump reads from.
func (c *ChannelConn) Events() <-chan Event {
	return c.events
}

// Done returns the done channel.
func (c *ChannelConn) Done() <-chan struct{} {
	return c.done
}

// Close marks the connection as done. Safe to call multiple times.
func (c *ChannelConn) Close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// ConnRegistry tracks live connection handles. It is shared between the
// transport layer (register/unregister, client count for health checks)
// and the engine (event delivery), so it is thread-safe.
type ConnRegistry struct {
	mu    sync.RWMutex
	conns map[ConnID]ConnHandle
}

// NewConnRegistry creates an empty registry.
func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		conns: make(map[ConnID]ConnHandle),
	}
}

// Register adds a connection to the registry.
func (r *ConnRegistry) Register(conn ConnHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID()] = conn
}

// Unregister removes a connection from the registry.
func (r *ConnRegistry) Unregister(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Get retrieves a connection by ID.
func (r *ConnRegistry) Get(id ConnID) (ConnHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

// Count returns the number of registered connections.
func (r *ConnRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
