package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/siege-game/backend/internal/logger"
	"github.com/siege-game/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// MaxSessions is the default cap on concurrently held game sessions.
const MaxSessions = 10

// SessionKeepAliveWindow protects recently used sessions from age-based cleanup.
const SessionKeepAliveWindow = 5 * time.Minute

// Default player names for sessions started without explicit names.
const (
	DefaultDefender = "Player1"
	DefaultAttacker = "Player2"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// MapBuilder builds the map a session is played on.
type MapBuilder interface {
	BuildLevel(ctx context.Context, name string, limits models.SquadLimits) (*models.GameMap, error)
}

// StartRequest describes a session to start.
type StartRequest struct {
	Level    string             `json:"level"`
	Defender string             `json:"defender"`
	Attacker string             `json:"attacker"`
	Limits   models.SquadLimits `json:"limits"`
}

// SessionState holds the session metadata and the map it owns.
type SessionState struct {
	Session      *models.GameSession
	Map          *models.GameMap
	LastAccessed time.Time
}

// Manager owns all running game sessions. Each session owns its map exclusively.
type Manager struct {
	sessions    map[string]*SessionState
	mu          sync.RWMutex
	builder     MapBuilder
	maxSessions int
	defender    string
	attacker    string
	log         logrus.FieldLogger

	subMu       sync.RWMutex
	subscribers map[int]chan models.SessionEvent
	nextSubID   int
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxSessions overrides MaxSessions.
func WithMaxSessions(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxSessions = n
		}
	}
}

// WithDefaultPlayers overrides the names used when a request leaves them empty.
func WithDefaultPlayers(defender, attacker string) Option {
	return func(m *Manager) {
		if defender != "" {
			m.defender = defender
		}
		if attacker != "" {
			m.attacker = attacker
		}
	}
}

// WithLogger sets the logger used for session lifecycle messages.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a session manager building maps with builder.
func NewManager(builder MapBuilder, opts ...Option) *Manager {
	m := &Manager{
		sessions:    make(map[string]*SessionState),
		builder:     builder,
		maxSessions: MaxSessions,
		defender:    DefaultDefender,
		attacker:    DefaultAttacker,
		log:         logger.WithComponent("session"),
		subscribers: make(map[int]chan models.SessionEvent),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start builds the requested level and registers a new session on it.
// A failed build creates no session.
func (m *Manager) Start(ctx context.Context, req StartRequest) (*models.GameSession, error) {
	if req.Level == "" {
		return nil, fmt.Errorf("start session: level name is required")
	}
	if req.Defender == "" {
		req.Defender = m.defender
	}
	if req.Attacker == "" {
		req.Attacker = m.attacker
	}
	if req.Limits == (models.SquadLimits{}) {
		req.Limits = models.DefaultSquadLimits
	}

	id := uuid.New().String()
	log := m.log.WithFields(logrus.Fields{"session": id[:8], "level": req.Level})

	start := time.Now()
	gameMap, err := m.builder.BuildLevel(ctx, req.Level, req.Limits)
	if err != nil {
		log.WithError(err).Warn("Session build failed")
		return nil, err
	}

	session := models.NewGameSession(id, req.Level, req.Defender, req.Attacker)
	session.Status = models.SessionStatusReady
	session.Width = gameMap.Width()
	session.Height = gameMap.Height()
	session.Limits = gameMap.Limits()
	session.BuildTimeMs = time.Since(start).Milliseconds()

	m.evictIfFull()

	m.mu.Lock()
	m.sessions[id] = &SessionState{
		Session:      session,
		Map:          gameMap,
		LastAccessed: time.Now(),
	}
	snapshot := *session
	m.mu.Unlock()

	log.WithFields(logrus.Fields{
		"defender": req.Defender,
		"attacker": req.Attacker,
		"size":     fmt.Sprintf("%dx%d", session.Width, session.Height),
	}).Info("Session started")
	m.publish(models.SessionEventStarted, snapshot)

	return &snapshot, nil
}

// evictIfFull closes the least recently used sessions until one slot is free.
func (m *Manager) evictIfFull() {
	m.mu.Lock()
	var evicted []models.GameSession
	for len(m.sessions) >= m.maxSessions {
		var oldestID string
		var oldest time.Time
		for id, state := range m.sessions {
			if oldestID == "" || state.LastAccessed.Before(oldest) {
				oldestID, oldest = id, state.LastAccessed
			}
		}
		state := m.sessions[oldestID]
		state.Session.Status = models.SessionStatusClosed
		evicted = append(evicted, *state.Session)
		delete(m.sessions, oldestID)
	}
	m.mu.Unlock()

	for _, s := range evicted {
		m.log.WithField("session", s.ID[:8]).Info("Evicted session to stay under the session limit")
		m.publish(models.SessionEventClosed, s)
	}
}

// Get returns a snapshot of a session by ID.
func (m *Manager) Get(id string) (*models.GameSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	snapshot := *state.Session
	return &snapshot, true
}

// GetMap returns the map owned by a session and marks the session as used.
func (m *Manager) GetMap(id string) (*models.GameMap, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	state.LastAccessed = time.Now()
	return state.Map, true
}

// List returns snapshots of all sessions, oldest first.
func (m *Manager) List() []models.GameSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]models.GameSession, 0, len(m.sessions))
	for _, state := range m.sessions {
		list = append(list, *state.Session)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// Count returns the number of held sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Touch updates the LastAccessed timestamp for a session.
func (m *Manager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// Close ends a session and releases its map.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	state.Session.Status = models.SessionStatusClosed
	snapshot := *state.Session
	delete(m.sessions, id)
	m.mu.Unlock()

	m.log.WithField("session", shortID(id)).Info("Session closed")
	m.publish(models.SessionEventClosed, snapshot)
	return nil
}

// CleanupOldSessions removes sessions not accessed within maxAge, but keeps
// sessions accessed within SessionKeepAliveWindow. It returns how many were removed.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-SessionKeepAliveWindow)

	m.mu.Lock()
	var expired []models.GameSession
	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			state.Session.Status = models.SessionStatusClosed
			expired = append(expired, *state.Session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.log.WithField("session", shortID(s.ID)).Info("Cleaned up aged session")
		m.publish(models.SessionEventExpired, s)
	}
	return len(expired)
}

// Subscribe registers for session lifecycle events. Slow subscribers miss
// events rather than block the manager. Call the returned func to unsubscribe.
func (m *Manager) Subscribe(buffer int) (<-chan models.SessionEvent, func()) {
	ch := make(chan models.SessionEvent, buffer)

	m.subMu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subscribers, id)
			m.subMu.Unlock()
			close(ch)
		})
	}
}

func (m *Manager) publish(t models.SessionEventType, s models.GameSession) {
	event := models.SessionEvent{
		Type:      t,
		Session:   s,
		Timestamp: time.Now().UnixMilli(),
	}

	m.subMu.RLock()
	defer m.subMu.RUnlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
