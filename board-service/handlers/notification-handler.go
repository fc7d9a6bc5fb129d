package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"taskboard/board-service/models"
	"taskboard/board-service/services"
)

type NotificationHandler struct {
	app *services.AppService
}

func NewNotificationHandler(app *services.AppService) *NotificationHandler {
	return &NotificationHandler{app: app}
}

// GetNotifications returns the session user's notifications, newest first.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	state := h.app.State()
	if state.Auth.User == nil {
		writeError(w, http.StatusUnauthorized, "no active session")
		return
	}

	notifications := []models.Notification{}
	for _, n := range state.Notifications {
		if n.UserID == state.Auth.User.ID {
			notifications = append(notifications, n)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

// MarkRead flags one notification as read. Idempotent.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	state := h.app.MarkNotificationRead(mux.Vars(r)["notificationID"])
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}
