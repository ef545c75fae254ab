// File: internal/handlers/message_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/middleware"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/message"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/chat_services"
)

type MessageHandler struct {
	messageService *chat_services.MessageService
}

func NewMessageHandler(ms *chat_services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: ms}
}

// Send posts a message to a chat. The response is the sender's view; fan-out
// to other members continues in the background.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
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
		Text       string `json:"text"`
		Type       string `json:"type"`
		FileURL    string `json:"fileUrl"`
		FileName   string `json:"fileName"`
		FileSize   int64  `json:"fileSize"`
		DocumentID *uint  `json:"documentId"`
		ReplyToID  *uint  `json:"replyToId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	view, err := h.messageService.Send(r.Context(), userID, chat_services.SendInput{
		ChatID:     chatID,
		Text:       req.Text,
		Type:       domain.MessageType(req.Type),
		FileURL:    req.FileURL,
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		DocumentID: req.DocumentID,
		ReplyToID:  req.ReplyToID,
	})
	if err != nil {
		if errors.Is(err, chat_services.ErrEmptyMessage) {
			writeError(w, "Message has no content", http.StatusBadRequest)
			return
		}
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// List pages through a chat's history, newest first. Query params: limit,
// before (message ID cursor).
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
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

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	before, _ := strconv.ParseUint(query.Get("before"), 10, 32)

	views, err := h.messageService.ListMessages(r.Context(), chatID, userID, limit, uint(before))
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// MarkRead marks every message in the chat as read for the caller.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	if err := h.messageService.MarkChatAsRead(r.Context(), chatID, userID); err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat marked as read"})
}

// Delete removes a message. ?deleteType=forEveryone hard-deletes (sender
// only); forMe, the default, only hides the message for the caller.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messageID, err := pathID(r, "messageId")
	if err != nil {
		writeError(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	var forEveryone bool
	switch r.URL.Query().Get("deleteType") {
	case "forEveryone":
		forEveryone = true
	case "forMe", "":
	default:
		writeError(w, "Unknown delete type", http.StatusBadRequest)
		return
	}

	if err := h.messageService.Delete(r.Context(), messageID, userID, forEveryone); err != nil {
		switch {
		case errors.Is(err, message.ErrMessageNotFound):
			writeError(w, "Message not found", http.StatusNotFound)
		case errors.Is(err, chat_services.ErrNotSender):
			writeError(w, "Only the sender can delete for everyone", http.StatusForbidden)
		default:
			log.Printf("[MessageHandler] Delete failed: %v", err)
			writeChatError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Message deleted"})
}
