// Package session holds the shared planning poker data types and the
// in-memory session store. Sessions are plain data; all mutation rules
// beyond simple upserts live in the engine package.
package session

import "time"

// Story is an opaque client-defined payload (number, title, whatever the
// frontend sends). The backend echoes it verbatim and never interprets
// individual fields.
type Story map[string]any

// User is a participant in a session. ID is the stable identity key;
// the same user may reconnect under a new transport connection.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LastActivity time.Time `json:"lastActivity"`
}

// Vote is a single user's estimate for the current story round.
// Value is opaque — "5", "?", "coffee", the engine does not care.
type Vote struct {
	UserID    string    `json:"userId"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the full shared state of one planning poker room.
type Session struct {
	ID               string    `json:"id"`
	Users            []User    `json:"users"`
	CurrentStory     Story     `json:"currentStory"`
	Stories          []Story   `json:"stories"`
	Votes            []Vote    `json:"votes"`
	IsVotingRevealed bool      `json:"isVotingRevealed"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// New creates an empty session with a fixed lifetime from now.
// The expiry is not refreshed by activity.
func New(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Users:     []User{},
		Votes:     []Vote{},
		Stories:   []Story{},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session's lifetime has passed.
func (s *Session) IsExpired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// UpsertUser adds the user to the session or, if a user with the same ID
// is already present, replaces that entry in place (keeping its position).
// Either way LastActivity is set to now.
func (s *Session) UpsertUser(u User) {
	u.LastActivity = time.Now()
	for i := range s.Users {
		if s.Users[i].ID == u.ID {
			s.Users[i] = u
			return
		}
	}
	s.Users = append(s.Users, u)
}

// RemoveUser deletes the user with the given ID, preserving the order of
// the remaining users. Returns true if a user was removed.
func (s *Session) RemoveUser(userID string) bool {
	for i := range s.Users {
		if s.Users[i].ID == userID {
			s.Users = append(s.Users[:i], s.Users[i+1:]...)
			return true
		}
	}
	return false
}

// TouchUser updates the user's LastActivity timestamp.
// Returns false if the user is not in the session.
func (s *Session) TouchUser(userID string) bool {
	for i := range s.Users {
		if s.Users[i].ID == userID {
			s.Users[i].LastActivity = time.Now()
			return true
		}
	}
	return false
}

// SetVote records the vote, replacing any previous vote by the same user,
// and returns the stored vote. The vote timestamp is always set here, at
// submission time.
func (s *Session) SetVote(v Vote) Vote {
	filtered := s.Votes[:0]
	for _, existing := range s.Votes {
		if existing.UserID != v.UserID {
			filtered = append(filtered, existing)
		}
	}
	v.Timestamp = time.Now()
	s.Votes = append(filtered, v)
	return v
}

// SelectStory makes story the current one and starts a fresh round:
// votes are cleared and the reveal flag is reset.
func (s *Session) SelectStory(story Story) {
	s.CurrentStory = story
	s.Votes = []Vote{}
	s.IsVotingRevealed = false
}

// HideVotes returns the round to the hidden state and clears all votes.
func (s *Session) HideVotes() {
	s.IsVotingRevealed = false
	s.Votes = []Vote{}
}

// AddStory appends a story to the session backlog.
func (s *Session) AddStory(story Story) {
	if s.Stories == nil {
		s.Stories = []Story{}
	}
	s.Stories = append(s.Stories, story)
}

// Clone returns a copy of the session safe to hand to other goroutines.
// Slices are copied; story payloads are shared because the engine never
// mutates a story map after it is stored.
func (s *Session) Clone() *Session {
	c := *s
	c.Users = append([]User(nil), s.Users...)
	c.Votes = append([]Vote(nil), s.Votes...)
	c.Stories = append([]Story(nil), s.Stories...)
	return &c
}

// Patch is a shallow partial update for a session, applied field by field.
// Nil fields are left untouched. The session ID is deliberately absent:
// it can never be overwritten by a patch.
type Patch struct {
	Users            *[]User  `json:"users"`
	CurrentStory     *Story   `json:"currentStory"`
	Stories          *[]Story `json:"stories"`
	Votes            *[]Vote  `json:"votes"`
	IsVotingRevealed *bool    `json:"isVotingRevealed"`
}

// Apply overwrites the session's fields with the patch's non-nil values.
func (p Patch) Apply(s *Session) {
	if p.Users != nil {
		s.Users = *p.Users
	}
	if p.CurrentStory != nil {
		s.CurrentStory = *p.CurrentStory
	}
	if p.Stories != nil {
		s.Stories = *p.Stories
	}
	if p.Votes != nil {
		s.Votes = *p.Votes
	}
	if p.IsVotingRevealed != nil {
		s.IsVotingRevealed = *p.IsVotingRevealed
	}
}
