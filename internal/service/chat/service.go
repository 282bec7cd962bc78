package chat

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/code-companion/backend/internal/model/chat"
)

var (
	ErrModelRequired   = errors.New("model id is required")
	ErrSessionNotFound = errors.New("session not found")
)

type entry struct {
	session    chat.Session
	transcript *chat.Transcript
}

// Service encapsulates conversation state management. Every session owns its
// own transcript; transcripts are never shared between sessions.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewService bootstraps the in-memory chat service.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]*entry),
	}
}

// CreateSession provisions an anonymous session whose transcript is seeded
// with the greeting turn.
func (s *Service) CreateSession(_ context.Context, modelID string) (chat.Session, error) {
	if modelID == "" {
		return chat.Session{}, ErrModelRequired
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		Model:     modelID,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &entry{
		session:    session,
		transcript: chat.NewTranscript(chat.SeedTurn()),
	}
	s.mu.Unlock()

	log.Printf("[chat] session=%s created model=%s", session.ID, modelID)
	return session, nil
}

// EndSession tears the session down together with its transcript.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	log.Printf("[chat] session=%s ended", sessionID)
	return nil
}

// AppendTurn appends a turn to the session transcript.
func (s *Service) AppendTurn(_ context.Context, sessionID string, turn chat.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	e.transcript.Append(turn)
	return nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return e.session, nil
}

// SelectModel switches the model used for subsequent submissions.
func (s *Service) SelectModel(_ context.Context, sessionID, modelID string) (chat.Session, error) {
	if modelID == "" {
		return chat.Session{}, ErrModelRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	e.session.Model = modelID
	return e.session, nil
}

// ResetTranscript drops every turn and restores the greeting seed.
func (s *Service) ResetTranscript(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	e.transcript = chat.NewTranscript(chat.SeedTurn())
	return nil
}

// LoadTranscript returns a snapshot of the session's turns.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.transcript.Snapshot(), nil
}

// Count reports the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
