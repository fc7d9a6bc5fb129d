package services

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"taskboard/board-service/models"
	"taskboard/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024 * 1024 // 1MB
)

// Client represents one connected UI session.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Username string
}

// WebSocketMessage is the wire format pushed to clients. Every applied
// command results in one "sync" message carrying the full new snapshot;
// clients re-render from it.
type WebSocketMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ReadPump drains the connection. Clients never mutate state over the
// socket; all writes go through the HTTP surface, so inbound traffic is
// only ping handling.
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
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Logger.Errorf("Event ID: WS_READ_ERROR, Description: WebSocket error: %v", err)
			}
			break
		}

		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			logging.Logger.Errorf("Event ID: WS_DECODE_ERROR, Description: Error unmarshalling WebSocket message: %v", err)
			continue
		}

		if wsMessage.Type == "ping" {
			pong := WebSocketMessage{
				Type: "pong",
				Data: map[string]string{"timestamp": time.Now().Format(time.RFC3339)},
			}
			if pongJSON, err := json.Marshal(pong); err == nil {
				// Drop the reply rather than block on a saturated buffer.
				select {
				case c.Send <- pongJSON:
				default:
				}
			}
		}
	}
}

// WritePump pumps messages from the hub to the connection.
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
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush queued messages into the same frame
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
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

// Hub maintains the set of active clients and fans snapshots out to them.
type Hub struct {
	Clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		Clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastState pushes the new snapshot to every connected client so all
// sessions render the same state.
func (h *Hub) BroadcastState(state models.AppState) {
	message := WebSocketMessage{Type: "sync", Data: state}

	jsonMessage, err := json.Marshal(message)
	if err != nil {
		logging.Logger.Errorf("Event ID: WS_ENCODE_ERROR, Description: Error marshalling snapshot: %v", err)
		return
	}

	h.broadcast <- jsonMessage
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.Clients[client] = true
			logging.Logger.Infof("Event ID: WS_CLIENT_CONNECTED, Description: Client connected: %s", client.Username)
		case client := <-h.unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				logging.Logger.Infof("Event ID: WS_CLIENT_DISCONNECTED, Description: Client disconnected: %s", client.Username)
			}
		case message := <-h.broadcast:
			for client := range h.Clients {
				select {
				case client.Send <- message:
				default:
					// Send buffer full, assume the client is gone.
					// Closing the connection ends both pumps; Send is
					// only ever closed by unregister, after ReadPump
					// has stopped writing to it.
					delete(h.Clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}
