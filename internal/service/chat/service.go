package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/throne-room/backend/internal/model/persona"
)

var (
	ErrPersonaRequired = errors.New("persona id is required")
	ErrPersonaNotFound = errors.New("persona not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Service keeps the sessions of currently mounted persona screens. Sessions
// share nothing; the lock only guards the registry map.
type Service struct {
	personas  persona.Store
	completer Completer
	opts      Options
	log       *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates an empty registry. completer may be nil when no
// provider is configured; rounds then resolve to the fallback reply.
func NewService(personas persona.Store, completer Completer, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		personas:  personas,
		completer: completer,
		opts:      opts,
		log:       opts.Logger,
		sessions:  make(map[string]*Session),
	}
}

// CreateSession mounts a fresh session bound to a persona.
func (s *Service) CreateSession(_ context.Context, personaID string) (*Session, error) {
	if personaID == "" {
		return nil, ErrPersonaRequired
	}
	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return nil, ErrPersonaNotFound
	}

	session := NewSession(uuid.NewString(), p, s.completer, s.opts)

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	s.log.Debug("session created", zap.String("session", session.ID()), zap.String("persona", personaID))
	return session, nil
}

// GetSession retrieves a mounted session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// CloseSession discards a session. Nothing about it survives.
func (s *Service) CloseSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	session.Close()
	s.log.Debug("session closed", zap.String("session", sessionID))
	return nil
}

// Len returns the number of mounted sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
