package engine

import (
	"testing"
	"time"

	"github.com/gurudaths93/planning-poker-backend/internal/session"
)

// Most tests call dispatch directly instead of Start/Send: the engine is
// not running, so state can be inspected without racing its goroutine.

func newTestEngine(cfg Config) (*Engine, *ConnRegistry) {
	conns := NewConnRegistry()
	return New(cfg, conns, nil), conns
}

func connect(conns *ConnRegistry, id ConnID) *ChannelConn {
	c := NewChannelConn(id, 16)
	conns.Register(c)
	return c
}

// drain collects everything currently buffered for a connection.
func drain(c *ChannelConn) []Event {
	var events []Event
	for {
		select {
		case evt := <-c.Events():
			events = append(events, evt)
		default:
			return events
		}
	}
}

func countByName(events []Event, name string) int {
	n := 0
	for _, evt := range events {
		if evt.Name() == name {
			n++
		}
	}
	return n
}

func TestJoinCreatesSessionWithDefaults(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	c := connect(conns, "c1")

	e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1", Name: "Alice"}})

	events := drain(c)
	if len(events) != 1 {
		t.Fatalf("expected exactly one event for the joiner, got %d", len(events))
	}
	joined, ok := events[0].(SessionJoinedEvent)
	if !ok {
		t.Fatalf("expected SessionJoinedEvent, got %T", events[0])
	}
	if joined.Session.IsVotingRevealed {
		t.Error("new session must start with votes hidden")
	}
	if len(joined.Session.Votes) != 0 || len(joined.Session.Stories) != 0 {
		t.Error("new session must start with no votes and no stories")
	}
	if got := joined.Session.ExpiresAt.Sub(joined.Session.CreatedAt); got != 24*time.Hour {
		t.Errorf("expected 24h lifetime, got %v", got)
	}

	s, ok := e.store.Get("s1")
	if !ok {
		t.Fatal("join must create the session in the store")
	}
	if len(s.Users) != 1 || s.Users[0].ID != "u1" {
		t.Errorf("expected [u1] in users, got %+v", s.Users)
	}
}

func TestJoinNotifiesExistingMembers(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	c1 := connect(conns, "c1")
	c2 := connect(conns, "c2")

	e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1", Name: "Alice"}})
	drain(c1)

	e.dispatch(JoinSessionMsg{ConnID: "c2", SessionID: "s1", User: session.User{ID: "u2", Name: "Bob"}})

	c1Events := drain(c1)
	if countByName(c1Events, "user-joined") != 1 {
		t.Errorf("existing member should get one user-joined, got %v", c1Events)
	}
	c2Events := drain(c2)
	if len(c2Events) != 1 || c2Events[0].Name() != "session-joined" {
		t.Errorf("joiner should get only session-joined, got %v", c2Events)
	}
}

func TestRejoinKeepsUserListUnique(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	connect(conns, "c1")

	for i := 0; i < 3; i++ {
		e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1", Name: "Alice"}})
	}

	s, _ := e.store.Get("s1")
	if len(s.Users) != 1 {
		t.Errorf("repeated joins by the same user must not duplicate, got %d users", len(s.Users))
	}
}

func TestMigrationBetweenSessions(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	mover := connect(conns, "c-mover")
	stayerA := connect(conns, "c-a")
	memberB := connect(conns, "c-b")

	e.dispatch(JoinSessionMsg{ConnID: "c-a", SessionID: "A", User: session.User{ID: "ua", Name: "Anna"}})
	e.dispatch(JoinSessionMsg{ConnID: "c-b", SessionID: "B", User: session.User{ID: "ub", Name: "Ben"}})
	e.dispatch(JoinSessionMsg{ConnID: "c-mover", SessionID: "A", User: session.User{ID: "u1", Name: "Mia"}})
	drain(mover)
	drain(stayerA)
	drain(memberB)

	e.dispatch(JoinSessionMsg{ConnID: "c-mover", SessionID: "B", User: session.User{ID: "u1", Name: "Mia"}})

	aEvents := drain(stayerA)
	if countByName(aEvents, "user-left") != 1 || len(aEvents) != 1 {
		t.Errorf("remaining member of A should get exactly one user-left, got %v", aEvents)
	}
	bEvents := drain(memberB)
	if countByName(bEvents, "user-joined") != 1 || len(bEvents) != 1 {
		t.Errorf("member of B should get exactly one user-joined, got %v", bEvents)
	}
	moverEvents := drain(mover)
	if countByName(moverEvents, "session-joined") != 1 || len(moverEvents) != 1 {
		t.Errorf("mover should get exactly one session-joined, got %v", moverEvents)
	}

	a, _ := e.store.Get("A")
	for _, u := range a.Users {
		if u.ID == "u1" {
			t.Error("migrated user must no longer appear in the old session")
		}
	}
	b, _ := e.store.Get("B")
	if len(b.Users) != 2 {
		t.Errorf("expected 2 users in B after migration, got %d", len(b.Users))
	}
}

func TestFullVotingRound(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	c := connect(conns, "c1")

	e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "S1", User: session.User{ID: "u1", Name: "Alice"}})
	e.dispatch(StorySelectedMsg{SessionID: "S1", Story: session.Story{"number": "PBI-1"}})
	e.dispatch(VoteSubmittedMsg{SessionID: "S1", Vote: session.Vote{UserID: "u1", Value: "5"}})
	e.dispatch(RevealVotesMsg{SessionID: "S1"})

	s, _ := e.store.Get("S1")
	if !s.IsVotingRevealed {
		t.Error("expected revealed phase after reveal")
	}
	if len(s.Votes) != 1 || s.Votes[0].UserID != "u1" || s.Votes[0].Value != "5" {
		t.Errorf("expected one vote (u1, 5), got %+v", s.Votes)
	}

	e.dispatch(HideVotesMsg{SessionID: "S1"})

	s, _ = e.store.Get("S1")
	if s.IsVotingRevealed || len(s.Votes) != 0 {
		t.Errorf("expected hidden empty round after hide, got revealed=%v votes=%d", s.IsVotingRevealed, len(s.Votes))
	}

	events := drain(c)
	for _, name := range []string{"session-joined", "story-selected", "vote-submitted", "votes-revealed", "votes-hidden"} {
		if countByName(events, name) != 1 {
			t.Errorf("expected exactly one %s event, got %d", name, countByName(events, name))
		}
	}
}

func TestRevealIsIdempotent(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	connect(conns, "c1")

	e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1"}})
	e.dispatch(VoteSubmittedMsg{SessionID: "s1", Vote: session.Vote{UserID: "u1", Value: "8"}})
	e.dispatch(RevealVotesMsg{SessionID: "s1"})
	e.dispatch(RevealVotesMsg{SessionID: "s1"})

	s, _ := e.store.Get("s1")
	if !s.IsVotingRevealed {
		t.Error("expected revealed phase")
	}
	if len(s.Votes) != 1 {
		t.Errorf("double reveal must not change votes, got %d", len(s.Votes))
	}
}

func TestLateVoteAcceptedByDefault(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	connect(conns, "c1")

	e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1"}})
	e.dispatch(RevealVotesMsg{SessionID: "s1"})
	e.dispatch(VoteSubmittedMsg{SessionID: "s1", Vote: session.Vote{UserID: "u1", Value: "13"}})

	s, _ := e.store.Get("s1")
	if len(s.Votes) != 1 {
		t.Errorf("late vote should be accepted under the default policy, got %d votes", len(s.Votes))
	}
}

func TestLateVoteRejectedWhenConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RejectVotesAfterReveal = true
	e, conns := newTestEngine(cfg)
	c := connect(conns, "c1")

	e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1"}})
	e.dispatch(RevealVotesMsg{SessionID: "s1"})
	drain(c)

	e.dispatch(VoteSubmittedMsg{SessionID: "s1", Vote: session.Vote{UserID: "u1", Value: "13"}})

	s, _ := e.store.Get("s1")
	if len(s.Votes) != 0 {
		t.Errorf("late vote must be dropped when the policy rejects it, got %d votes", len(s.Votes))
	}
	if events := drain(c); len(events) != 0 {
		t.Errorf("a rejected vote must not produce outbound events, got %v", events)
	}
}

func TestOperationsOnAbsentSessionAreSilent(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	c := connect(conns, "c1")

	e.dispatch(UpdateSessionMsg{SessionID: "ghost"})
	e.dispatch(StorySelectedMsg{SessionID: "ghost", Story: session.Story{"number": "X"}})
	e.dispatch(VoteSubmittedMsg{SessionID: "ghost", Vote: session.Vote{UserID: "u1", Value: "1"}})
	e.dispatch(RevealVotesMsg{SessionID: "ghost"})
	e.dispatch(HideVotesMsg{SessionID: "ghost"})
	e.dispatch(StoryAddedMsg{SessionID: "ghost", Story: session.Story{"number": "X"}})
	e.dispatch(UserActivityMsg{SessionID: "ghost", UserID: "u1"})

	if e.store.Count() != 0 {
		t.Error("operations other than join must not create sessions")
	}
	if events := drain(c); len(events) != 0 {
		t.Errorf("absent-session operations must emit nothing, got %v", events)
	}
}

func TestDisconnectKeepsUserInSession(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	c1 := connect(conns, "c1")
	connect(conns, "c2")

	e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1", Name: "Alice"}})
	e.dispatch(JoinSessionMsg{ConnID: "c2", SessionID: "s1", User: session.User{ID: "u2", Name: "Bob"}})
	drain(c1)

	e.dispatch(DisconnectMsg{ConnID: "c1"})
	conns.Unregister("c1")

	s, _ := e.store.Get("s1")
	if len(s.Users) != 2 {
		t.Errorf("disconnect must not remove users, got %d", len(s.Users))
	}

	// The dropped connection no longer receives broadcasts.
	e.dispatch(RevealVotesMsg{SessionID: "s1"})
	if events := drain(c1); len(events) != 0 {
		t.Errorf("disconnected client received events: %v", events)
	}
}

func TestUpdateSessionMergeAndIDProtection(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	c := connect(conns, "c1")

	e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1"}})
	drain(c)

	revealed := true
	e.dispatch(UpdateSessionMsg{SessionID: "s1", Patch: session.Patch{IsVotingRevealed: &revealed}})

	s, _ := e.store.Get("s1")
	if s.ID != "s1" {
		t.Errorf("session key must survive a partial update, got %q", s.ID)
	}
	if !s.IsVotingRevealed {
		t.Error("expected patched field to apply")
	}
	if len(s.Users) != 1 {
		t.Error("fields absent from the patch must be untouched")
	}
	events := drain(c)
	if countByName(events, "session-updated") != 1 {
		t.Errorf("expected one session-updated broadcast, got %v", events)
	}
}

func TestActivityPingIsSilent(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	c := connect(conns, "c1")

	e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1"}})
	drain(c)
	s, _ := e.store.Get("s1")
	before := s.Users[0].LastActivity

	time.Sleep(5 * time.Millisecond)
	e.dispatch(UserActivityMsg{SessionID: "s1", UserID: "u1"})

	s, _ = e.store.Get("s1")
	if !s.Users[0].LastActivity.After(before) {
		t.Error("activity ping must refresh LastActivity")
	}
	if events := drain(c); len(events) != 0 {
		t.Errorf("activity ping must not broadcast, got %v", events)
	}
}

func TestSweepRemovesExpiredSessions(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	connect(conns, "c1")

	e.dispatch(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1"}})
	s, _ := e.store.Get("s1")
	s.ExpiresAt = time.Now().Add(-time.Minute)

	e.sweepExpired()

	if _, ok := e.store.Get("s1"); ok {
		t.Error("expired session must be removed by the sweep")
	}
}

func TestAsyncDelivery(t *testing.T) {
	e, conns := newTestEngine(DefaultConfig())
	c := connect(conns, "c1")

	e.Start()
	defer e.Stop()

	e.Send(JoinSessionMsg{ConnID: "c1", SessionID: "s1", User: session.User{ID: "u1", Name: "Alice"}})

	select {
	case evt := <-c.Events():
		if evt.Name() != "session-joined" {
			t.Errorf("expected session-joined, got %s", evt.Name())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for session-joined")
	}
}
