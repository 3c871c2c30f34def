// Package session holds each candidate's in-progress state: raw answers and
// already-graded practical outcomes. Sessions are isolated from each other;
// the only shared state is the read-only catalog and the append-only store.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillgate/skillgate/internal/grading"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID         string
	UserID     int64
	StartedAt  time.Time
	Answers    map[int]string // question id -> raw response
	Practicals map[int]grading.Outcome
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}, now: time.Now}
}

func (m *Manager) Start(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		StartedAt:  m.now(),
		Answers:    map[int]string{},
		Practicals: map[int]grading.Outcome{},
	}
	m.sessions[s.ID] = s
	return s
}

func (m *Manager) SetAnswer(id string, questionID int, response string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Answers[questionID] = response
	return nil
}

func (m *Manager) SetPractical(id string, out grading.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Practicals[out.QuestionID] = out
	return nil
}

// Snapshot returns a deep copy so grading and persistence never race with
// late answer saves.
func (m *Manager) Snapshot(id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	cp := Session{
		ID:         s.ID,
		UserID:     s.UserID,
		StartedAt:  s.StartedAt,
		Answers:    make(map[int]string, len(s.Answers)),
		Practicals: make(map[int]grading.Outcome, len(s.Practicals)),
	}
	for k, v := range s.Answers {
		cp.Answers[k] = v
	}
	for k, v := range s.Practicals {
		cp.Practicals[k] = v
	}
	return cp, nil
}

// End discards the session after submission.
func (m *Manager) End(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
