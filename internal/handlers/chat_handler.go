// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/middleware"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/chat"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/user"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/chat_services"
)

type ChatHandler struct {
	chatService *chat_services.ChatService
}

func NewChatHandler(cs *chat_services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: cs}
}

// ListChats returns the caller's chat list with previews and unread counts.
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.chatService.ListChats(r.Context(), userID)
	if err != nil {
		log.Printf("[ChatHandler] Error listing chats: %v", err)
		writeError(w, "Could not retrieve chats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// CreateChat creates a self, private or group chat depending on the body.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Type      string `json:"type"`
		Email     string `json:"email"`
		Title     string `json:"title"`
		MemberIDs []uint `json:"memberIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	switch req.Type {
	case "self":
		c, err := h.chatService.CreateSelfChat(r.Context(), userID)
		if err != nil {
			writeError(w, "Could not create chat", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	case "private":
		c, err := h.chatService.CreatePrivateChat(r.Context(), userID, req.Email)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				writeError(w, "No user with that email", http.StatusNotFound)
				return
			}
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	case "group":
		c, err := h.chatService.CreateGroupChat(r.Context(), userID, req.Title, req.MemberIDs)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	default:
		writeError(w, "Unknown chat type", http.StatusBadRequest)
	}
}

// Members lists a chat's members.
func (h *ChatHandler) Members(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	members, err := h.chatService.Members(r.Context(), chatID, userID)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// AddMember adds a user to a group chat.
func (h *ChatHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	var req struct {
		UserID uint `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeError(w, "A user ID is required", http.StatusBadRequest)
		return
	}

	if err := h.chatService.AddGroupMember(r.Context(), chatID, userID, req.UserID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			writeError(w, "User not found", http.StatusNotFound)
			return
		}
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Member added"})
}

// DeleteChat removes a chat and all its content.
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	if err := h.chatService.DeleteChat(r.Context(), chatID, userID); err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat deleted"})
}

// writeChatError maps chat service errors onto HTTP statuses.
func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrChatNotFound):
		writeError(w, "Chat not found", http.StatusNotFound)
	case errors.Is(err, chat.ErrNotMember):
		writeError(w, "Not a member of this chat", http.StatusForbidden)
	case errors.Is(err, chat_services.ErrForbidden):
		writeError(w, "Not allowed", http.StatusForbidden)
	default:
		log.Printf("[ChatHandler] Unexpected error: %v", err)
		writeError(w, "Something went wrong", http.StatusInternalServerError)
	}
}

// pathID parses a numeric mux path variable.
func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err
}
