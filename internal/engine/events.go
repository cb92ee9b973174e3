package engine

import "github.com/gurudaths93/planning-poker-backend/internal/session"

// Event represents an outbound event from the engine to connections.
// Name is the wire-level event name; the struct itself is the payload.
// Every event carries a full session snapshot alongside its delta, so a
// client can always rebuild its view from the latest event alone.
type Event interface {
	Name() string
}

// SessionJoinedEvent goes to the joining connection only.
type SessionJoinedEvent struct {
	Session *session.Session `json:"session"`
	User    session.User     `json:"user"`
}

func (SessionJoinedEvent) Name() string { return "session-joined" }

// UserJoinedEvent goes to the other members of the joined session.
type UserJoinedEvent struct {
	User    session.User     `json:"user"`
	Session *session.Session `json:"session"`
}

func (UserJoinedEvent) Name() string { return "user-joined" }

// UserLeftEvent goes to the remaining members of a session a user
// migrated away from.
type UserLeftEvent struct {
	User    session.User     `json:"user"`
	Session *session.Session `json:"session"`
}

func (UserLeftEvent) Name() string { return "user-left" }

// SessionUpdatedEvent carries the merged session after a partial update.
type SessionUpdatedEvent struct {
	Session *session.Session `json:"session"`
}

func (SessionUpdatedEvent) Name() string { return "session-updated" }

// StorySelectedEvent announces the current story for a new round.
type StorySelectedEvent struct {
	Story   session.Story    `json:"story"`
	Session *session.Session `json:"session"`
}

func (StorySelectedEvent) Name() string { return "story-selected" }

// VoteSubmittedEvent announces a recorded vote.
type VoteSubmittedEvent struct {
	Vote    session.Vote     `json:"vote"`
	Session *session.Session `json:"session"`
}

func (VoteSubmittedEvent) Name() string { return "vote-submitted" }

// VotesRevealedEvent announces the transition to the revealed phase.
type VotesRevealedEvent struct {
	Session *session.Session `json:"session"`
}

func (VotesRevealedEvent) Name() string { return "votes-revealed" }

// VotesHiddenEvent announces the start of a fresh hidden round.
type VotesHiddenEvent struct {
	Session *session.Session `json:"session"`
}

func (VotesHiddenEvent) Name() string { return "votes-hidden" }

// StoryAddedEvent announces a story appended to the backlog.
type StoryAddedEvent struct {
	Story   session.Story    `json:"story"`
	Session *session.Session `json:"session"`
}

func (StoryAddedEvent) Name() string { return "story-added" }
