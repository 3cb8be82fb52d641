package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/qabot/internal/config"
	"github.com/zhouzirui/qabot/internal/model/assistant"
	"github.com/zhouzirui/qabot/internal/model/chat"
	"github.com/zhouzirui/qabot/internal/service/ai"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrAssistantNotFound = errors.New("assistant not found")
	ErrEmptyMessage      = errors.New("message is empty")
)

// Service owns every live session and runs conversation turns against the completer.
type Service struct {
	completer ai.Completer
	profiles  assistant.Store
	aiCfg     config.AIConfig
	idleTTL   time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// sessionState is the per-session object. turnMu serializes turns, mu guards
// the transcript so reads stay possible while a call is in flight.
type sessionState struct {
	turnMu sync.Mutex

	mu         sync.RWMutex
	session    chat.Session
	transcript *chat.Transcript
	// generation changes on every Clear so an in-flight reply can tell that
	// the transcript it belonged to is gone.
	generation uint64
}

type Option func(*Service)

// WithIdleTTL sets how long an untouched session survives Sweep. Zero keeps sessions forever.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Service) { s.idleTTL = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService bootstraps the in-memory chat service.
func NewService(completer ai.Completer, profiles assistant.Store, aiCfg config.AIConfig, opts ...Option) *Service {
	s := &Service{
		completer: completer,
		profiles:  profiles,
		aiCfg:     aiCfg,
		now:       time.Now,
		sessions:  make(map[string]*sessionState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profiles exposes the assistant store backing the sessions.
func (s *Service) Profiles() assistant.Store {
	return s.profiles
}

// StreamingEnabled reports whether turns should stream deltas by default.
func (s *Service) StreamingEnabled() bool {
	return s.aiCfg.Stream
}

// CreateSession provisions an empty conversation. An empty assistantID picks the default profile.
func (s *Service) CreateSession(_ context.Context, assistantID string) (chat.Session, error) {
	if assistantID == "" {
		assistantID = s.profiles.Default().ID
	} else if _, ok := s.profiles.FindByID(assistantID); !ok {
		return chat.Session{}, ErrAssistantNotFound
	}

	now := s.now().UTC()
	session := chat.Session{
		ID:          uuid.NewString(),
		AssistantID: assistantID,
		CreatedAt:   now,
		LastActive:  now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{session: session, transcript: chat.NewTranscript()}
	s.mu.Unlock()

	log.Debug().Str("session", session.ID).Str("assistant", assistantID).Msg("session created")
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	st, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.session, nil
}

// EndSession destroys the session and its transcript.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// Transcript returns the stored messages of a session in order.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	st, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.transcript.Messages(), nil
}

// Clear empties the transcript of a session. A reply still in flight is dropped.
func (s *Service) Clear(_ context.Context, sessionID string) error {
	st, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	st.transcript.Clear()
	st.generation++
	st.session.LastActive = s.now().UTC()
	st.mu.Unlock()

	log.Info().Str("session", sessionID).Msg("transcript cleared")
	return nil
}

// Len reports the number of live sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) lookup(sessionID string) (*sessionState, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return st, nil
}

func (s *Service) systemPrompt(assistantID string) string {
	if p, ok := s.profiles.FindByID(assistantID); ok {
		return p.SystemPrompt
	}
	return s.profiles.Default().SystemPrompt
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
