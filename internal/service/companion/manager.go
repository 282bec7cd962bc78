package companion

import (
	"context"
	"sync"

	"github.com/zhouzirui/code-companion/backend/internal/model/catalog"
	chatservice "github.com/zhouzirui/code-companion/backend/internal/service/chat"
)

// Manager owns one Controller per live session.
type Manager struct {
	chats     *chatservice.Service
	completer Completer
	catalog   catalog.Store

	mu          sync.RWMutex
	controllers map[string]*Controller
}

// NewManager creates a session manager.
func NewManager(chats *chatservice.Service, completer Completer, models catalog.Store) *Manager {
	return &Manager{
		chats:       chats,
		completer:   completer,
		catalog:     models,
		controllers: make(map[string]*Controller),
	}
}

// Catalog returns the model catalog sessions select from.
func (m *Manager) Catalog() catalog.Store {
	return m.catalog
}

// Open starts a session. An empty modelID selects the catalog default.
func (m *Manager) Open(ctx context.Context, modelID string) (*Controller, error) {
	if modelID == "" {
		modelID = m.catalog.Default().ID
	}
	if _, ok := m.catalog.FindByID(modelID); !ok {
		return nil, ErrUnknownModel
	}

	session, err := m.chats.CreateSession(ctx, modelID)
	if err != nil {
		return nil, err
	}

	ctrl := newController(session.ID, m.chats, m.completer, m.catalog)
	m.mu.Lock()
	m.controllers[session.ID] = ctrl
	m.mu.Unlock()
	return ctrl, nil
}

// Get returns the controller of a live session.
func (m *Manager) Get(sessionID string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ctrl, ok := m.controllers[sessionID]
	if !ok {
		return nil, chatservice.ErrSessionNotFound
	}
	return ctrl, nil
}

// Close ends a session and discards its transcript.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	_, ok := m.controllers[sessionID]
	delete(m.controllers, sessionID)
	m.mu.Unlock()
	if !ok {
		return chatservice.ErrSessionNotFound
	}
	return m.chats.EndSession(ctx, sessionID)
}
