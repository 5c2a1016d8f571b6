package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// BoardEvent tells connected clients that the owner's board changed and they
// should refetch. Clients never receive task data over the socket; the REST
// API stays the single read path.
type BoardEvent struct {
	Type   string `json:"type"`
	TaskID string `json:"taskId,omitempty"`
	Owner  string `json:"-"`
}

// Event types broadcast by the task handlers.
const (
	EventTasksChanged      = "tasks:changed"
	EventRecycleBinChanged = "recyclebin:changed"
)

// Client is one connected browser tab.
type Client struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Owner string
}

// ReadPump drains the connection so control frames are processed. Clients
// are consumers only; anything they send is discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// WritePump pumps events from the hub to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type ownedMessage struct {
	owner   string
	payload []byte
}

// Hub fans board events out to every connected tab of the same owner. It is
// the generic "UI refresh" consumer of task-board mutations.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan ownedMessage
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan ownedMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast sends a board event to every tab the event's owner has open.
func (h *Hub) Broadcast(event BoardEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling board event: %v", err)
		return
	}

	h.broadcast <- ownedMessage{owner: event.Owner, payload: payload}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("Client connected: %s", client.Owner)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Printf("Client disconnected: %s", client.Owner)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				if client.Owner != message.owner {
					continue
				}

				select {
				case client.Send <- message.payload:
				default:
					// Client's send buffer is full, assume disconnected
					log.Printf("Client send buffer full, removing client: %s", client.Owner)
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}
