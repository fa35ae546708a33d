package session

import (
	"sync"

	"github.com/ad/go-telegram-gorbushka/internal/fsm"
)

// Session is the per-chat conversation state. It lives only in memory.
type Session struct {
	State            fsm.State
	LiveMessageID    int
	PendingDeleteIDs []int
	FormFields       map[string]string
}

func (s Session) Field(name string) (string, bool) {
	v, ok := s.FormFields[name]
	return v, ok
}

func (s Session) clone() Session {
	out := Session{
		State:         s.State,
		LiveMessageID: s.LiveMessageID,
	}
	if len(s.PendingDeleteIDs) > 0 {
		out.PendingDeleteIDs = append([]int(nil), s.PendingDeleteIDs...)
	}
	if len(s.FormFields) > 0 {
		out.FormFields = make(map[string]string, len(s.FormFields))
		for k, v := range s.FormFields {
			out.FormFields[k] = v
		}
	}
	return out
}

type entry struct {
	mu      sync.Mutex
	session Session
}

// Store keeps sessions keyed by chat id. Every operation is atomic for its key.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[int64]*entry)}
}

func (s *Store) entry(chatID int64) *entry {
	s.mu.RLock()
	e, ok := s.entries[chatID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[chatID]; !ok {
		e = &entry{}
		s.entries[chatID] = e
	}
	return e
}

// Update runs fn with exclusive access to the chat's session.
func (s *Store) Update(chatID int64, fn func(*Session)) {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.session)
}

// Get returns a snapshot; mutating it does not affect the store.
func (s *Store) Get(chatID int64) Session {
	var out Session
	s.Update(chatID, func(sess *Session) {
		out = sess.clone()
	})
	return out
}

func (s *Store) SetState(chatID int64, state fsm.State) {
	s.Update(chatID, func(sess *Session) {
		sess.State = state
	})
}

// MergeFields applies patch to the form. A nil value removes the field.
func (s *Store) MergeFields(chatID int64, patch map[string]*string) {
	s.Update(chatID, func(sess *Session) {
		for k, v := range patch {
			if v == nil {
				delete(sess.FormFields, k)
				continue
			}
			if sess.FormFields == nil {
				sess.FormFields = make(map[string]string)
			}
			sess.FormFields[k] = *v
		}
	})
}

func (s *Store) ResetFields(chatID int64) {
	s.Update(chatID, func(sess *Session) {
		sess.FormFields = nil
	})
}

func (s *Store) SetLiveMessageID(chatID int64, messageID int) {
	s.Update(chatID, func(sess *Session) {
		sess.LiveMessageID = messageID
	})
}

func (s *Store) AppendPendingDelete(chatID int64, messageID int) {
	s.Update(chatID, func(sess *Session) {
		sess.PendingDeleteIDs = append(sess.PendingDeleteIDs, messageID)
	})
}

// DrainPendingDeletes returns the queued message ids and clears the queue.
func (s *Store) DrainPendingDeletes(chatID int64) []int {
	var ids []int
	s.Update(chatID, func(sess *Session) {
		ids = sess.PendingDeleteIDs
		sess.PendingDeleteIDs = nil
	})
	return ids
}
