package chatstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/spec-kit/farm-shop/internal/chat"
)

// MemoryStore keeps sessions in process memory. States are stored encoded
// so callers never share phase data with the store.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

type memorySession struct {
	state     []byte
	user      *chat.SessionUser
	expiresAt time.Time
}

// NewMemoryStore returns an empty store. A zero ttl keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, sessions: make(map[string]*memorySession)}
}

var _ Store = (*MemoryStore)(nil)

// session returns the live session for id, dropping it when expired.
func (s *MemoryStore) session(id string) *memorySession {
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if s.ttl > 0 && !s.now().Before(sess.expiresAt) {
		delete(s.sessions, id)
		return nil
	}
	return sess
}

func (s *MemoryStore) touch(id string) *memorySession {
	sess := s.session(id)
	if sess == nil {
		sess = &memorySession{}
		s.sessions[id] = sess
	}
	sess.expiresAt = s.now().Add(s.ttl)
	return sess
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*chat.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	if sess == nil || sess.state == nil {
		return nil, ErrSessionNotFound
	}
	var state chat.State
	if err := json.Unmarshal(sess.state, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, state chat.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(sessionID).state = data
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) LoadUser(_ context.Context, sessionID string) (*chat.SessionUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID)
	if sess == nil || sess.user == nil {
		return nil, nil
	}
	user := *sess.user
	return &user, nil
}

func (s *MemoryStore) SaveUser(_ context.Context, sessionID string, user chat.SessionUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(sessionID).user = &user
	return nil
}

func (s *MemoryStore) ClearUser(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.session(sessionID); sess != nil {
		sess.user = nil
	}
	return nil
}
