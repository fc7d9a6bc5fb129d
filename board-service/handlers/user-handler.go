package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"taskboard/board-service/services"
	"taskboard/logging"
)

type UserHandler struct {
	app *services.AppService
}

func NewUserHandler(app *services.AppService) *UserHandler {
	return &UserHandler{app: app}
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"users": h.app.State().Users})
}

type quickAddUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// QuickAddUser creates an ad-hoc user from the invite/assign flows.
func (h *UserHandler) QuickAddUser(w http.ResponseWriter, r *http.Request) {
	var req quickAddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	user, state, err := h.app.QuickAddUser(req.Name, req.Email)
	if err != nil {
		serviceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: USER_ADDED, Description: User '%s' added", user.DisplayName())
	writeJSON(w, http.StatusCreated, map[string]any{"user": user, "state": state})
}

func (h *UserHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	state, err := h.app.RemoveUser(userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: USER_REMOVED, Description: User %s removed", userID)
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}
