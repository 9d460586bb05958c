package models

import "time"

// SessionStatus represents the status of a game session.
type SessionStatus string

const (
	SessionStatusBuilding SessionStatus = "building"
	SessionStatusReady    SessionStatus = "ready"
	SessionStatusClosed   SessionStatus = "closed"
	SessionStatusError    SessionStatus = "error"
)

// GameSession is one running game on one built map.
type GameSession struct {
	ID          string        `json:"id"`
	Level       string        `json:"level"`
	Defender    string        `json:"defender"`
	Attacker    string        `json:"attacker"`
	Status      SessionStatus `json:"status"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Limits      SquadLimits   `json:"limits"`
	BuildTimeMs int64         `json:"buildTimeMs,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	Error       string        `json:"error,omitempty"`
}

// NewGameSession creates a GameSession in building status.
func NewGameSession(id, level, defender, attacker string) *GameSession {
	return &GameSession{
		ID:        id,
		Level:     level,
		Defender:  defender,
		Attacker:  attacker,
		Status:    SessionStatusBuilding,
		CreatedAt: time.Now(),
	}
}

// SessionEventType names a session lifecycle event.
type SessionEventType string

const (
	SessionEventStarted SessionEventType = "session:started"
	SessionEventClosed  SessionEventType = "session:closed"
	SessionEventExpired SessionEventType = "session:expired"
)

// SessionEvent is published whenever a session changes lifecycle state.
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	Session   GameSession      `json:"session"`
	Timestamp int64            `json:"timestamp"`
}
