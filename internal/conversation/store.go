// Package conversation keeps per-user conversation state in memory for the
// process lifetime. There is no persistence and no expiry; state is created
// lazily on first use and removed only by an explicit Clear.
package conversation

import (
	"sync"

	"github.com/tuannvm/jira-assistant/internal/models"
)

// State tracks one user's conversation across turns. A turn must hold the
// embedded mutex for its full duration; the engine relies on this to
// serialize concurrent messages from the same user.
type State struct {
	sync.Mutex

	UserID        string
	CurrentIntent models.Intent
	Draft         *models.IssueDraft
	History       []string
	AwaitingField string
}

// AppendHistory records one turn line ("User: ..." or "Agent: ...").
// Storage is unbounded; only the tail is ever read.
func (s *State) AppendHistory(entry string) {
	s.History = append(s.History, entry)
}

// HistoryTail returns the most recent n history entries.
func (s *State) HistoryTail(n int) []string {
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// Store keys conversation state by user identifier.
type Store struct {
	mu     sync.Mutex
	states map[string]*State
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{states: make(map[string]*State)}
}

// Get returns the state for a user, creating it on first access.
func (st *Store) Get(userID string) *State {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.states[userID]
	if !ok {
		s = &State{UserID: userID, Draft: &models.IssueDraft{}}
		st.states[userID] = s
	}
	return s
}

// Clear removes a user's conversation state. The next message from that
// user starts a fresh conversation.
func (st *Store) Clear(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.states, userID)
}

// Len reports how many users currently have state.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.states)
}
