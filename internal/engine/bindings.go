package engine

// bindings maps live connections to the session each is attached to, plus
// the reverse index used to fan out broadcasts (the room membership).
// It is owned by the engine goroutine and deliberately unsynchronized.
type bindings struct {
	sessions map[ConnID]string
	rooms    map[string]map[ConnID]struct{}
}

func newBindings() *bindings {
	return &bindings{
		sessions: make(map[ConnID]string),
		rooms:    make(map[string]map[ConnID]struct{}),
	}
}

// bind attaches the connection to a session, detaching it from any
// previous one first. Rebinding to the same session is a no-op.
func (b *bindings) bind(conn ConnID, sessionID string) {
	if prev, ok := b.sessions[conn]; ok {
		if prev == sessionID {
			return
		}
		b.leaveRoom(conn, prev)
	}
	b.sessions[conn] = sessionID
	room, ok := b.rooms[sessionID]
	if !ok {
		room = make(map[ConnID]struct{})
		b.rooms[sessionID] = room
	}
	room[conn] = struct{}{}
}

// currentSessionOf returns the session the connection is bound to.
func (b *bindings) currentSessionOf(conn ConnID) (string, bool) {
	id, ok := b.sessions[conn]
	return id, ok
}

// unbind detaches the connection entirely.
func (b *bindings) unbind(conn ConnID) {
	if sessionID, ok := b.sessions[conn]; ok {
		b.leaveRoom(conn, sessionID)
		delete(b.sessions, conn)
	}
}

// members returns the connections currently attached to a session.
func (b *bindings) members(sessionID string) []ConnID {
	room := b.rooms[sessionID]
	if len(room) == 0 {
		return nil
	}
	out := make([]ConnID, 0, len(room))
	for conn := range room {
		out = append(out, conn)
	}
	return out
}

func (b *bindings) leaveRoom(conn ConnID, sessionID string) {
	room := b.rooms[sessionID]
	delete(room, conn)
	if len(room) == 0 {
		delete(b.rooms, sessionID)
	}
}
