package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"taskboard/board-service/models"
	"taskboard/board-service/services"
	"taskboard/logging"
)

type BoardHandler struct {
	app *services.AppService
}

func NewBoardHandler(app *services.AppService) *BoardHandler {
	return &BoardHandler{app: app}
}

type createBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	board, state, err := h.app.CreateBoard(req.Name, req.Description)
	if err != nil {
		serviceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: BOARD_CREATED, Description: Board '%s' created", board.Name)
	writeJSON(w, http.StatusCreated, map[string]any{"board": board, "state": state})
}

func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	var board models.Board
	if err := json.NewDecoder(r.Body).Decode(&board); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	board.ID = mux.Vars(r)["boardID"]

	state, err := h.app.UpdateBoard(board)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}

func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardID"]
	state := h.app.DeleteBoard(boardID)
	logging.Logger.Infof("Event ID: BOARD_DELETED, Description: Board %s deleted", boardID)
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}

// OpenBoard selects the board and lazily creates its missing default
// columns.
func (h *BoardHandler) OpenBoard(w http.ResponseWriter, r *http.Request) {
	state, err := h.app.OpenBoard(mux.Vars(r)["boardID"])
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}

type inviteMembersRequest struct {
	UserIDs []string `json:"userIds"`
}

func (h *BoardHandler) InviteMembers(w http.ResponseWriter, r *http.Request) {
	var req inviteMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	boardID := mux.Vars(r)["boardID"]
	state, err := h.app.InviteMembers(boardID, req.UserIDs)
	if err != nil {
		serviceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: MEMBERS_INVITED, Description: %d member(s) invited to board %s", len(req.UserIDs), boardID)
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}

func (h *BoardHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	state, err := h.app.RemoveMember(vars["boardID"], vars["userID"])
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}
