// File: internal/handlers/ws_handler.go
package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/middleware"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/realtime"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens before the upgrade; cross-origin apps are the
	// expected clients.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub    *realtime.Hub
	logger services.Logger
}

func NewWSHandler(hub *realtime.Hub, logger services.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// Serve upgrades the connection and registers it as a session for the
// authenticated user. Each device gets its own session.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WSHandler] Upgrade failed: %v", err)
		return
	}

	sessionID := uuid.NewString()
	client := realtime.NewWSClient(sessionID, conn, h.hub, h.logger)
	h.hub.Register(client, userID)
	client.Run()
}
