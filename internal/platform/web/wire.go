package web

import (
	"encoding/json"
	"fmt"

	"github.com/gurudaths93/planning-poker-backend/internal/engine"
	"github.com/gurudaths93/planning-poker-backend/internal/session"
)

// The wire format is one JSON object per websocket message:
// {"event": "<name>", "data": {...}}. Inbound event names match the
// payload shapes below; outbound events reuse their engine struct as the
// data object.

type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type joinPayload struct {
	SessionID string       `json:"sessionId"`
	User      session.User `json:"user"`
}

type updatePayload struct {
	SessionID string        `json:"sessionId"`
	Session   session.Patch `json:"session"`
}

type storyPayload struct {
	SessionID string        `json:"sessionId"`
	Story     session.Story `json:"story"`
}

type votePayload struct {
	SessionID string       `json:"sessionId"`
	Vote      session.Vote `json:"vote"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type activityPayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

// decodeMessage translates an inbound envelope into an engine message.
func decodeMessage(connID engine.ConnID, env inboundEnvelope) (engine.Message, error) {
	switch env.Event {
	case "join-session":
		var p joinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("join-session payload: %w", err)
		}
		return engine.JoinSessionMsg{ConnID: connID, SessionID: p.SessionID, User: p.User}, nil

	case "update-session":
		var p updatePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("update-session payload: %w", err)
		}
		return engine.UpdateSessionMsg{SessionID: p.SessionID, Patch: p.Session}, nil

	case "story-selected":
		var p storyPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("story-selected payload: %w", err)
		}
		return engine.StorySelectedMsg{SessionID: p.SessionID, Story: p.Story}, nil

	case "vote-submitted":
		var p votePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("vote-submitted payload: %w", err)
		}
		return engine.VoteSubmittedMsg{SessionID: p.SessionID, Vote: p.Vote}, nil

	case "reveal-votes":
		var p sessionPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("reveal-votes payload: %w", err)
		}
		return engine.RevealVotesMsg{SessionID: p.SessionID}, nil

	case "hide-votes":
		var p sessionPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("hide-votes payload: %w", err)
		}
		return engine.HideVotesMsg{SessionID: p.SessionID}, nil

	case "story-added":
		var p storyPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("story-added payload: %w", err)
		}
		return engine.StoryAddedMsg{SessionID: p.SessionID, Story: p.Story}, nil

	case "user-activity":
		var p activityPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("user-activity payload: %w", err)
		}
		return engine.UserActivityMsg{SessionID: p.SessionID, UserID: p.UserID}, nil

	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
}

// encodeEvent wraps an outbound event for the wire.
func encodeEvent(evt engine.Event) outboundEnvelope {
	return outboundEnvelope{Event: evt.Name(), Data: evt}
}
