// File: internal/realtime/presence.go
package realtime

import "sync"

// Presence tracks which sessions belong to which user (multi-device) and
// which sessions joined which chat room (typing scope). It is the only
// mutable shared state in the real-time layer and every access goes through
// the mutex; the raw maps are never handed out.
type Presence struct {
	mu sync.RWMutex

	// userID -> set of session ids. The entry exists iff the user has at
	// least one live session.
	userSessions map[uint]map[string]struct{}
	// sessionID -> userID, for unregister and room cleanup.
	sessionUser map[string]uint
	// chatID -> set of session ids joined to the room.
	roomSessions map[uint]map[string]struct{}
	// sessionID -> set of chat ids, so unregister can leave all rooms.
	sessionRooms map[string]map[uint]struct{}
}

func NewPresence() *Presence {
	return &Presence{
		userSessions: make(map[uint]map[string]struct{}),
		sessionUser:  make(map[string]uint),
		roomSessions: make(map[uint]map[string]struct{}),
		sessionRooms: make(map[string]map[uint]struct{}),
	}
}

// Register adds the session to the user's set. Idempotent: re-registering an
// already tracked pair is a no-op.
func (p *Presence) Register(sessionID string, userID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.userSessions[userID] == nil {
		p.userSessions[userID] = make(map[string]struct{})
	}
	p.userSessions[userID][sessionID] = struct{}{}
	p.sessionUser[sessionID] = userID
}

// Unregister removes the session everywhere: its user set (dropping the user
// entry when it was the last session) and every room it joined. Safe to call
// for sessions that never registered a user.
func (p *Presence) Unregister(sessionID string) (userID uint, wasRegistered bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, wasRegistered = p.sessionUser[sessionID]
	if wasRegistered {
		delete(p.sessionUser, sessionID)
		if set := p.userSessions[userID]; set != nil {
			delete(set, sessionID)
			if len(set) == 0 {
				delete(p.userSessions, userID)
			}
		}
	}

	for chatID := range p.sessionRooms[sessionID] {
		p.removeFromRoom(sessionID, chatID)
	}
	delete(p.sessionRooms, sessionID)

	return userID, wasRegistered
}

// JoinRoom subscribes the session to a chat room's ephemeral events. Does
// not affect user-scoped targeting.
func (p *Presence) JoinRoom(sessionID string, chatID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.roomSessions[chatID] == nil {
		p.roomSessions[chatID] = make(map[string]struct{})
	}
	p.roomSessions[chatID][sessionID] = struct{}{}

	if p.sessionRooms[sessionID] == nil {
		p.sessionRooms[sessionID] = make(map[uint]struct{})
	}
	p.sessionRooms[sessionID][chatID] = struct{}{}
}

// LeaveRoom unsubscribes the session from the room.
func (p *Presence) LeaveRoom(sessionID string, chatID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeFromRoom(sessionID, chatID)
	if set := p.sessionRooms[sessionID]; set != nil {
		delete(set, chatID)
		if len(set) == 0 {
			delete(p.sessionRooms, sessionID)
		}
	}
}

// removeFromRoom must be called with the lock held.
func (p *Presence) removeFromRoom(sessionID string, chatID uint) {
	if set := p.roomSessions[chatID]; set != nil {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(p.roomSessions, chatID)
		}
	}
}

// SessionsForUser returns a copy of the user's live session ids.
func (p *Presence) SessionsForUser(userID uint) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyKeys(p.userSessions[userID])
}

// SessionsInRoom returns a copy of the session ids joined to the room.
func (p *Presence) SessionsInRoom(chatID uint) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyKeys(p.roomSessions[chatID])
}

// UserForSession resolves a session back to its user.
func (p *Presence) UserForSession(sessionID string) (uint, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	userID, ok := p.sessionUser[sessionID]
	return userID, ok
}

// IsOnline reports whether the user has at least one live session.
func (p *Presence) IsOnline(userID uint) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.userSessions[userID]) > 0
}

func copyKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
