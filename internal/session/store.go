// Package session keeps a bounded, in-memory conversation window per client session.
package session

import (
	"container/list"
	"sync"

	"github.com/google/uuid"

	"github.com/hyperjump/sakha/internal/models"
)

// Store is an LRU of sessions. Each session keeps at most maxTurns turns, oldest dropped first.
type Store struct {
	maxSessions int
	maxTurns    int
	mu          sync.Mutex
	order       *list.List
	items       map[string]*list.Element
}

type entry struct {
	id    string
	turns []models.ConversationTurn
}

// NewStore creates a store. Non-positive limits fall back to 1000 sessions and 3 turns.
func NewStore(maxSessions, maxTurns int) *Store {
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	if maxTurns <= 0 {
		maxTurns = 3
	}
	return &Store{
		maxSessions: maxSessions,
		maxTurns:    maxTurns,
		order:       list.New(),
		items:       make(map[string]*list.Element),
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// History returns a copy of the turns recorded for id, oldest first.
func (s *Store) History(id string) []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	elem, ok := s.items[id]
	if !ok {
		return nil
	}
	s.order.MoveToFront(elem)
	turns := elem.Value.(*entry).turns
	out := make([]models.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// Append records a turn for id, creating the session and evicting the least recently used one if full.
func (s *Store) Append(id string, turn models.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elem, ok := s.items[id]
	if !ok {
		if s.order.Len() >= s.maxSessions {
			oldest := s.order.Back()
			if oldest != nil {
				s.order.Remove(oldest)
				delete(s.items, oldest.Value.(*entry).id)
			}
		}
		elem = s.order.PushFront(&entry{id: id})
		s.items[id] = elem
	} else {
		s.order.MoveToFront(elem)
	}
	e := elem.Value.(*entry)
	e.turns = append(e.turns, turn)
	if len(e.turns) > s.maxTurns {
		e.turns = append([]models.ConversationTurn(nil), e.turns[len(e.turns)-s.maxTurns:]...)
	}
}

// Clear forgets id.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[id]; ok {
		s.order.Remove(elem)
		delete(s.items, id)
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
