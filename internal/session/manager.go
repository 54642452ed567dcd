package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Alias1177/HeartRisk/internal/riskcheck"
	"github.com/Alias1177/HeartRisk/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrSessionNotFound is returned for IDs the manager does not hold
var ErrSessionNotFound = errors.New("session not found")

// Session binds one browser or chat to its own form controller
type Session struct {
	ID         string
	Controller *riskcheck.Controller
	CreatedAt  time.Time
}

type Manager struct {
	sessions   map[string]*Session
	mutex      sync.RWMutex
	historyKey string
	predictor  models.Predictor
	store      models.HistoryStore
}

func NewManager(historyKey string, predictor models.Predictor, store models.HistoryStore) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		historyKey: historyKey,
		predictor:  predictor,
		store:      store,
	}
}

// StorageKey is where the history of a session is persisted
func (m *Manager) StorageKey(sessionID string) string {
	return m.historyKey + ":" + sessionID
}

// CreateSession starts a session with a fresh random ID
func (m *Manager) CreateSession(ctx context.Context) *Session {
	session, _ := m.GetOrCreate(ctx, uuid.New().String())
	return session
}

// GetOrCreate returns the session for sessionID, creating it and loading its
// history when it is not held yet. The bool reports whether it was created.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string) (*Session, bool) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	m.mutex.RLock()
	session, exists := m.sessions[sessionID]
	m.mutex.RUnlock()
	if exists {
		return session, false
	}

	// storage is read outside the lock so a slow backend only delays this session
	controller := riskcheck.NewController(m.StorageKey(sessionID), m.predictor, m.store)
	controller.LoadHistory(ctx)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if session, exists := m.sessions[sessionID]; exists {
		return session, false
	}

	session = &Session{
		ID:         sessionID,
		Controller: controller,
		CreatedAt:  time.Now(),
	}
	m.sessions[sessionID] = session
	return session, true
}

func (m *Manager) GetSession(sessionID string) (*Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func (m *Manager) DeleteSession(sessionID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, sessionID)
	return nil
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// Prune drops sessions untouched for longer than maxIdle. Their history stays
// in storage and is restored when the same ID comes back.
func (m *Manager) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	pruned := 0
	for id, session := range m.sessions {
		if session.Controller.UpdatedAt().Before(cutoff) {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned
}

// RunPruner calls Prune every interval until ctx is done
func (m *Manager) RunPruner(ctx context.Context, interval, maxIdle time.Duration) {
	logger := log.With().Str("component", "session").Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := m.Prune(maxIdle); pruned > 0 {
				logger.Info().Int("pruned", pruned).Int("active", m.Count()).Msg("Idle sessions pruned")
			}
		}
	}
}
