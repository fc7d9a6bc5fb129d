package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"taskboard/board-service/middleware"
	"taskboard/board-service/services"
	"taskboard/logging"
)

type StateHandler struct {
	app *services.AppService
	hub *services.Hub
}

func NewStateHandler(app *services.AppService, hub *services.Hub) *StateHandler {
	return &StateHandler{app: app, hub: hub}
}

// GetState returns the full application snapshot.
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"state": h.app.State()})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection and streams snapshot sync
// messages to the client.
func (h *StateHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Errorf("Event ID: WS_UPGRADE_FAILED, Description: Failed to upgrade connection: %v", err)
		return
	}

	client := &services.Client{
		Hub:      h.hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Username: username,
	}
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
