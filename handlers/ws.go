package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/skhapre/dashboard-app/services"
)

// WSHandler upgrades browser tabs to the board-event stream.
type WSHandler struct {
	hub *services.Hub
}

func NewWSHandler(hub *services.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleWebSocket upgrades the HTTP connection and registers the tab with
// the hub. Multiple tabs per owner are fine; each gets every event.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // CORS already restricts the API surface
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	client := &services.Client{
		Hub:   h.hub,
		Conn:  conn,
		Send:  make(chan []byte, 64),
		Owner: owner,
	}

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
