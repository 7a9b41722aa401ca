package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/XenomLight/canChat/internal/model"
)

// SessionRegistry is an interface that defines the methods required for session identity management.
type SessionRegistry interface {
	// Resolve returns the Participant bound to the given session identifier,
	// creating it on first use. The stored caller identity is never updated
	// on subsequent calls.
	Resolve(sessionID, callerIdentity string, now time.Time) model.Participant

	// ExpireOlderThan removes all Participants created more than ttl before
	// now and returns how many were removed.
	ExpireOlderThan(ttl time.Duration, now time.Time) int
}

// SessionRegistryImpl implements the SessionRegistry interface.
type SessionRegistryImpl struct {
	mu       sync.RWMutex
	sessions map[string]model.Participant
	nameSeq  uint64
}

// NewSessionRegistry creates a new SessionRegistryImpl instance.
func NewSessionRegistry() *SessionRegistryImpl {
	return &SessionRegistryImpl{
		sessions: make(map[string]model.Participant),
	}
}

// Resolve returns the Participant bound to the given session identifier,
// creating it on first use. Display names are allocated from a process-wide
// counter that is never reset or reused, including after expiry.
func (sr *SessionRegistryImpl) Resolve(sessionID, callerIdentity string, now time.Time) model.Participant {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if participant, ok := sr.sessions[sessionID]; ok {
		return participant
	}

	sr.nameSeq++
	participant := model.Participant{
		SessionID:      sessionID,
		CallerIdentity: callerIdentity,
		DisplayName:    fmt.Sprintf("User %d", sr.nameSeq),
		JoinedAt:       now,
	}
	sr.sessions[sessionID] = participant

	return participant
}

// ExpireOlderThan removes all Participants created more than ttl before now.
// Session expiry is independent of room membership and room lifetime.
func (sr *SessionRegistryImpl) ExpireOlderThan(ttl time.Duration, now time.Time) int {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	removed := 0
	for sessionID, participant := range sr.sessions {
		if now.Sub(participant.JoinedAt) > ttl {
			delete(sr.sessions, sessionID)
			removed++
		}
	}

	return removed
}
