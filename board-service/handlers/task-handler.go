package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"taskboard/board-service/models"
	"taskboard/board-service/services"
	"taskboard/logging"
)

type TaskHandler struct {
	app *services.AppService
}

func NewTaskHandler(app *services.AppService) *TaskHandler {
	return &TaskHandler{app: app}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	created, state, err := h.app.CreateTask(task)
	if err != nil {
		serviceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s '%s' created in column %s", created.ID, created.Title, created.ColumnID)
	writeJSON(w, http.StatusCreated, map[string]any{"task": created, "state": state})
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	task.ID = mux.Vars(r)["taskID"]

	state, err := h.app.UpdateTask(task)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	state := h.app.DeleteTask(taskID)
	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted", taskID)
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}

type moveTaskRequest struct {
	OverID string `json:"overId"`
}

// MoveTask applies a drag-and-drop gesture. The body names the drop target:
// a column id or the id of the task it was dropped on.
func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	var req moveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	state := h.app.DropTask(mux.Vars(r)["taskID"], req.OverID)
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}
