package engine

import "github.com/gurudaths93/planning-poker-backend/internal/session"

// Message represents an inbound event from a connection to the engine.
type Message interface {
	engineMessage()
}

// JoinSessionMsg attaches a connection's user to a session, creating the
// session if it does not exist yet.
type JoinSessionMsg struct {
	ConnID    ConnID
	SessionID string
	User      session.User
}

func (JoinSessionMsg) engineMessage() {}

// UpdateSessionMsg applies a shallow partial update to a session.
type UpdateSessionMsg struct {
	SessionID string
	Patch     session.Patch
}

func (UpdateSessionMsg) engineMessage() {}

// StorySelectedMsg makes a story the current one and starts a new round.
// A nil story deselects the current story.
type StorySelectedMsg struct {
	SessionID string
	Story     session.Story
}

func (StorySelectedMsg) engineMessage() {}

// VoteSubmittedMsg records a user's vote for the current round.
type VoteSubmittedMsg struct {
	SessionID string
	Vote      session.Vote
}

func (VoteSubmittedMsg) engineMessage() {}

// RevealVotesMsg flips the session into the revealed phase.
type RevealVotesMsg struct {
	SessionID string
}

func (RevealVotesMsg) engineMessage() {}

// HideVotesMsg returns the session to the hidden phase and clears votes.
type HideVotesMsg struct {
	SessionID string
}

func (HideVotesMsg) engineMessage() {}

// StoryAddedMsg appends a story to the session backlog.
type StoryAddedMsg struct {
	SessionID string
	Story     session.Story
}

func (StoryAddedMsg) engineMessage() {}

// UserActivityMsg refreshes a user's LastActivity timestamp. Produces no
// outbound event.
type UserActivityMsg struct {
	SessionID string
	UserID    string
}

func (UserActivityMsg) engineMessage() {}

// DisconnectMsg is sent by the transport when a connection closes. The
// user stays in the session so a reconnect picks up where it left off.
type DisconnectMsg struct {
	ConnID ConnID
}

func (DisconnectMsg) engineMessage() {}
