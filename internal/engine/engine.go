// Package engine implements the session state synchronization core: the
// single goroutine that owns all session state, applies inbound events in
// arrival order, and fans the resulting state out to connected clients.
package engine

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/gurudaths93/planning-poker-backend/internal/session"
)

// Config holds configuration for the engine.
type Config struct {
	SessionTTL             time.Duration // Fixed session lifetime, not refreshed by activity
	SweepInterval          time.Duration // How often expired sessions are reaped
	QueueSize              int           // Inbound message buffer size
	RejectVotesAfterReveal bool          // Drop votes submitted while the round is revealed
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SessionTTL:             24 * time.Hour,
		SweepInterval:          5 * time.Minute,
		QueueSize:              256,
		RejectVotesAfterReveal: false,
	}
}

// Engine processes inbound messages one at a time on a single goroutine.
// The store and the connection bindings are only ever touched from that
// goroutine, so every read-mutate-broadcast sequence is atomic relative
// to all other operations and no locks are needed. The expiration sweep
// runs on the same timeline.
type Engine struct {
	config Config
	store  *session.Store
	conns  *ConnRegistry
	binds  *bindings
	logger *log.Logger

	msgChan chan Message
	done    chan struct{}
}

// New creates an engine. The registry is shared with the transport layer,
// which registers connection handles before sending join messages.
func New(cfg Config, conns *ConnRegistry, logger *log.Logger) *Engine {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	return &Engine{
		config:  cfg,
		store:   session.NewStore(cfg.SessionTTL),
		conns:   conns,
		binds:   newBindings(),
		logger:  logger,
		msgChan: make(chan Message, cfg.QueueSize),
		done:    make(chan struct{}),
	}
}

// Start begins the engine's processing loop.
func (e *Engine) Start() {
	go e.run()
}

// Stop shuts the engine down. Messages sent after Stop are discarded.
func (e *Engine) Stop() {
	close(e.done)
}

// Send queues a message for processing.
func (e *Engine) Send(msg Message) {
	select {
	case e.msgChan <- msg:
	case <-e.done:
	}
}

// run is the single timeline all state changes happen on. The reaper
// ticker is part of the same select, so a sweep never interleaves with a
// message mid-mutation.
func (e *Engine) run() {
	ticker := time.NewTicker(e.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-e.msgChan:
			e.dispatch(msg)
		case <-ticker.C:
			e.sweepExpired()
		case <-e.done:
			return
		}
	}
}

func (e *Engine) dispatch(msg Message) {
	switch m := msg.(type) {
	case JoinSessionMsg:
		e.handleJoin(m)
	case UpdateSessionMsg:
		e.handleUpdateSession(m)
	case StorySelectedMsg:
		e.handleStorySelected(m)
	case VoteSubmittedMsg:
		e.handleVoteSubmitted(m)
	case RevealVotesMsg:
		e.handleRevealVotes(m)
	case HideVotesMsg:
		e.handleHideVotes(m)
	case StoryAddedMsg:
		e.handleStoryAdded(m)
	case UserActivityMsg:
		e.handleUserActivity(m)
	case DisconnectMsg:
		e.handleDisconnect(m)
	}
}

func (e *Engine) handleJoin(m JoinSessionMsg) {
	// Moving to a different session removes the user from the previous one
	// and tells its remaining members. Rejoining the same session skips
	// this entirely.
	if prevID, ok := e.binds.currentSessionOf(m.ConnID); ok && prevID != m.SessionID {
		if prev, ok := e.store.Get(prevID); ok {
			prev.RemoveUser(m.User.ID)
			e.store.Put(prevID, prev)
			e.broadcast(prevID, UserLeftEvent{User: m.User, Session: prev.Clone()}, m.ConnID)
		}
	}

	e.binds.bind(m.ConnID, m.SessionID)

	s := e.store.GetOrCreate(m.SessionID)
	s.UpsertUser(m.User)
	e.store.Put(m.SessionID, s)

	snapshot := s.Clone()
	e.sendTo(m.ConnID, SessionJoinedEvent{Session: snapshot, User: m.User})
	e.broadcast(m.SessionID, UserJoinedEvent{User: m.User, Session: snapshot}, m.ConnID)

	e.logf("user joined session", "session", m.SessionID, "user", m.User.Name)
}

func (e *Engine) handleUpdateSession(m UpdateSessionMsg) {
	s, ok := e.store.Get(m.SessionID)
	if !ok {
		return
	}

	m.Patch.Apply(s)
	e.store.Put(m.SessionID, s)

	e.broadcast(m.SessionID, SessionUpdatedEvent{Session: s.Clone()}, "")
	e.logf("session updated", "session", m.SessionID)
}

func (e *Engine) handleStorySelected(m StorySelectedMsg) {
	s, ok := e.store.Get(m.SessionID)
	if !ok {
		return
	}

	s.SelectStory(m.Story)
	e.store.Put(m.SessionID, s)

	e.broadcast(m.SessionID, StorySelectedEvent{Story: m.Story, Session: s.Clone()}, "")
	e.logf("story selected", "session", m.SessionID, "story", storyNumber(m.Story))
}

func (e *Engine) handleVoteSubmitted(m VoteSubmittedMsg) {
	s, ok := e.store.Get(m.SessionID)
	if !ok {
		return
	}
	if s.IsVotingRevealed && e.config.RejectVotesAfterReveal {
		return
	}

	stored := s.SetVote(m.Vote)
	e.store.Put(m.SessionID, s)

	e.broadcast(m.SessionID, VoteSubmittedEvent{Vote: stored, Session: s.Clone()}, "")
	e.logf("vote submitted", "session", m.SessionID, "user", m.Vote.UserID)
}

func (e *Engine) handleRevealVotes(m RevealVotesMsg) {
	s, ok := e.store.Get(m.SessionID)
	if !ok {
		return
	}

	s.IsVotingRevealed = true
	e.store.Put(m.SessionID, s)

	e.broadcast(m.SessionID, VotesRevealedEvent{Session: s.Clone()}, "")
	e.logf("votes revealed", "session", m.SessionID)
}

func (e *Engine) handleHideVotes(m HideVotesMsg) {
	s, ok := e.store.Get(m.SessionID)
	if !ok {
		return
	}

	s.HideVotes()
	e.store.Put(m.SessionID, s)

	e.broadcast(m.SessionID, VotesHiddenEvent{Session: s.Clone()}, "")
	e.logf("votes hidden", "session", m.SessionID)
}

func (e *Engine) handleStoryAdded(m StoryAddedMsg) {
	s, ok := e.store.Get(m.SessionID)
	if !ok {
		return
	}

	s.AddStory(m.Story)
	e.store.Put(m.SessionID, s)

	e.broadcast(m.SessionID, StoryAddedEvent{Story: m.Story, Session: s.Clone()}, "")
	e.logf("story added", "session", m.SessionID, "story", storyNumber(m.Story))
}

func (e *Engine) handleUserActivity(m UserActivityMsg) {
	s, ok := e.store.Get(m.SessionID)
	if !ok {
		return
	}
	if s.TouchUser(m.UserID) {
		e.store.Put(m.SessionID, s)
	}
}

func (e *Engine) handleDisconnect(m DisconnectMsg) {
	// The user stays in the session's user list so a reconnect keeps
	// their place. Only the connection binding goes away.
	e.binds.unbind(m.ConnID)
	e.logf("client disconnected", "conn", m.ConnID)
}

func (e *Engine) sweepExpired() {
	removed := e.store.SweepExpired(time.Now())
	for _, id := range removed {
		e.logf("cleaned up expired session", "session", id)
	}
}

// broadcast delivers the event to every connection in the session's room,
// skipping exclude (the empty ConnID excludes nobody).
func (e *Engine) broadcast(sessionID string, evt Event, exclude ConnID) {
	for _, connID := range e.binds.members(sessionID) {
		if connID == exclude {
			continue
		}
		e.sendTo(connID, evt)
	}
}

// sendTo delivers an event to a single connection, if it is still live.
func (e *Engine) sendTo(connID ConnID, evt Event) {
	if conn, ok := e.conns.Get(connID); ok {
		conn.Send(evt)
	}
}

func (e *Engine) logf(msg string, keyvals ...any) {
	if e.logger != nil {
		e.logger.Info(msg, keyvals...)
	}
}

// storyNumber extracts the display number from an opaque story payload
// for logging. Stories without a number log as "none".
func storyNumber(st session.Story) any {
	if st == nil {
		return "none"
	}
	if n, ok := st["number"]; ok {
		return n
	}
	return "none"
}
