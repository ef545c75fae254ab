// File: internal/realtime/hub.go
package realtime

import (
	"sync"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services"
)

// Hub is the fan-out router: it owns the presence registry and the live
// client set, and delivers events to all sessions of a user or all sessions
// in a chat room. Delivery is best-effort; a session whose buffer is full is
// dropped and must re-fetch state on reconnect.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]Client
	presence *Presence
	logger   services.Logger

	// OnClearUnread is wired at startup to the message pipeline's
	// mark-chat-as-read; the hub stays free of service dependencies.
	OnClearUnread func(userID, chatID uint)
}

func NewHub(logger services.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]Client),
		presence: NewPresence(),
		logger:   logger,
	}
}

// Register tracks a new authenticated session. The session immediately
// belongs to the user's broadcast group.
func (h *Hub) Register(client Client, userID uint) {
	h.mu.Lock()
	h.clients[client.SessionID()] = client
	h.mu.Unlock()

	h.presence.Register(client.SessionID(), userID)
	h.logger.Debug("session registered", "session_id", client.SessionID(), "user_id", userID)
}

// Unregister drops the session from the client set and the presence
// registry. Safe for sessions that disconnected before authenticating.
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	client, ok := h.clients[sessionID]
	delete(h.clients, sessionID)
	h.mu.Unlock()

	userID, wasRegistered := h.presence.Unregister(sessionID)
	if ok {
		client.Close()
	}
	if wasRegistered {
		h.logger.Debug("session unregistered", "session_id", sessionID, "user_id", userID)
	}
}

// JoinChat subscribes the session to a chat room's typing events.
func (h *Hub) JoinChat(sessionID string, chatID uint) {
	h.presence.JoinRoom(sessionID, chatID)
}

// LeaveChat unsubscribes the session from the room. User-scoped events keep
// flowing so the chat list still updates after leaving the chat screen.
func (h *Hub) LeaveChat(sessionID string, chatID uint) {
	h.presence.LeaveRoom(sessionID, chatID)
}

// UserForSession resolves the authenticated user behind a session.
func (h *Hub) UserForSession(sessionID string) (uint, bool) {
	return h.presence.UserForSession(sessionID)
}

// IsOnline reports whether any session of the user is connected.
func (h *Hub) IsOnline(userID uint) bool {
	return h.presence.IsOnline(userID)
}

// EmitToUser sends the event to every session of the user.
func (h *Hub) EmitToUser(userID uint, event Event) {
	h.emitToSessions(h.presence.SessionsForUser(userID), "", event)
}

// EmitToUsers sends the event to every session of each listed user.
func (h *Hub) EmitToUsers(userIDs []uint, event Event) {
	for _, id := range userIDs {
		h.EmitToUser(id, event)
	}
}

// EmitToRoomExceptUser sends the event to every session joined to the chat
// room except those belonging to the excluded user (the originator's other
// devices do not need their own typing echo).
func (h *Hub) EmitToRoomExceptUser(chatID, exceptUserID uint, event Event) {
	sessions := h.presence.SessionsInRoom(chatID)
	filtered := sessions[:0]
	for _, sid := range sessions {
		if uid, ok := h.presence.UserForSession(sid); ok && uid == exceptUserID {
			continue
		}
		filtered = append(filtered, sid)
	}
	h.emitToSessions(filtered, "", event)
}

// HandleClientEvent dispatches a client-originated frame for the session.
func (h *Hub) HandleClientEvent(sessionID string, ev ClientEvent) {
	userID, ok := h.presence.UserForSession(sessionID)
	if !ok {
		return
	}

	switch ev.Action {
	case ActionJoinChat:
		h.JoinChat(sessionID, ev.ChatID)
	case ActionLeaveChat:
		h.LeaveChat(sessionID, ev.ChatID)
	case ActionTyping:
		h.EmitToRoomExceptUser(ev.ChatID, userID, Event{
			Name:    EventUserTyping,
			Payload: UserTypingPayload{UserID: userID, IsTyping: ev.IsTyping},
		})
	case ActionClearUnread:
		if h.OnClearUnread != nil {
			h.OnClearUnread(userID, ev.ChatID)
		}
	default:
		h.logger.Warn("unknown client event", "action", ev.Action, "session_id", sessionID)
	}
}

func (h *Hub) emitToSessions(sessionIDs []string, skipSession string, event Event) {
	if len(sessionIDs) == 0 {
		return
	}

	h.mu.RLock()
	targets := make([]Client, 0, len(sessionIDs))
	for _, sid := range sessionIDs {
		if sid == skipSession {
			continue
		}
		if c, ok := h.clients[sid]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.Send(event) {
			// Slow consumer: drop the session, the client re-syncs on
			// reconnect.
			h.logger.Warn("dropping slow session", "session_id", c.SessionID(), "event", event.Name)
			h.Unregister(c.SessionID())
		}
	}
}
