package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskboard/board-service/clients"
	"taskboard/board-service/services"
	"taskboard/logging"
)

type SessionHandler struct {
	app *services.AppService
}

func NewSessionHandler(app *services.AppService) *SessionHandler {
	return &SessionHandler{app: app}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// collaboratorError maps an auth service failure onto our response. Client
// mistakes (400/401/404/409) keep the upstream status and message; upstream
// failures and an unreachable auth service are a bad gateway, not a
// credential error.
func collaboratorError(w http.ResponseWriter, err error) {
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

// Register creates an account with the auth service and opens a session.
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	token, state, err := h.app.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Logger.Warnf("Event ID: REGISTER_FAILED, Description: Registration failed for '%s': %v", req.Username, err)
		collaboratorError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User '%s' registered and signed in", req.Username)
	writeJSON(w, http.StatusCreated, map[string]any{"token": token, "state": state})
}

// Login authenticates against the auth service and opens a session.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	token, state, err := h.app.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Login failed for '%s': %v", req.Username, err)
		collaboratorError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: USER_LOGIN, Description: User '%s' signed in", req.Username)
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "state": state})
}

// Logout closes the session.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	state := h.app.Logout()
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}
