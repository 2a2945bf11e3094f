package session

import (
	"sync"

	"github.com/hupe1980/actionmesh/core"
)

// InMemoryStore is a volatile HistoryStore keeping conversations in a process
// local map. It is safe for concurrent access and best suited for the
// interactive CLI, tests or ephemeral demo servers.
type InMemoryStore struct {
	mu       sync.RWMutex
	maxKept  int
	sessions map[string][]core.ConversationMessage
}

// Options configure an InMemoryStore.
type Options struct {
	// MaxMessages bounds how many messages are retained per conversation; the
	// oldest are dropped first. 0 keeps everything.
	MaxMessages int
}

// NewInMemoryStore constructs an empty in-memory history store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{
		maxKept:  opts.MaxMessages,
		sessions: make(map[string][]core.ConversationMessage),
	}
}

var _ core.HistoryStore = (*InMemoryStore)(nil)

// History returns a copy of the conversation stored under id.
func (s *InMemoryStore) History(id string) ([]core.ConversationMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.sessions[id]
	out := make([]core.ConversationMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Append adds messages to the conversation, creating it lazily.
func (s *InMemoryStore) Append(id string, msgs ...core.ConversationMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.sessions[id], msgs...)
	if s.maxKept > 0 && len(history) > s.maxKept {
		history = append([]core.ConversationMessage(nil), history[len(history)-s.maxKept:]...)
	}
	s.sessions[id] = history
	return nil
}

// Reset deletes the conversation stored under id.
func (s *InMemoryStore) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored conversations.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
