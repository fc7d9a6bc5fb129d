package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"taskboard/board-service/clients"
	"taskboard/board-service/models"
	"taskboard/board-service/services"
)

type memoryStore struct{ state models.AppState }

func (m *memoryStore) Load() (models.AppState, error) { return m.state, nil }
func (m *memoryStore) Save(state models.AppState) error {
	m.state = state
	return nil
}

type stubAuth struct{}

func (stubAuth) Register(username, password string) (clients.AuthUser, error) {
	if username == "taken" {
		return clients.AuthUser{}, &clients.APIError{Status: http.StatusConflict, Message: "User exists"}
	}
	return clients.AuthUser{ID: 1, Username: username}, nil
}

func (stubAuth) Login(username, password string) (string, error) {
	if username == "down" {
		return "", errors.New("auth service unreachable: connection refused")
	}
	if password != "pw" {
		return "", &clients.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return "token-" + username, nil
}

func (stubAuth) Me(token string) (clients.AuthUser, error) {
	return clients.AuthUser{ID: 1, Username: strings.TrimPrefix(token, "token-")}, nil
}

func seededState() models.AppState {
	return models.AppState{
		Boards: []models.Board{{ID: "b1", Name: "Sprint 1", OwnerID: "u1", Members: []string{"u1"}}},
		Columns: []models.Column{
			{ID: "c1", BoardID: "b1", Name: "Backlog", Position: 0},
			{ID: "c2", BoardID: "b1", Name: "To do", Position: 1},
		},
		Tasks: []models.Task{
			{ID: "1", ColumnID: "c1", BoardID: "b1", Title: "A", Position: 0},
			{ID: "2", ColumnID: "c1", BoardID: "b1", Title: "B", Position: 1},
		},
		Users: []models.User{{ID: "u1", Name: "Alice", Email: "alice@example.com"}},
	}
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	app, err := services.NewAppService(&memoryStore{state: seededState()}, stubAuth{}, nil, "")
	if err != nil {
		t.Fatalf("NewAppService: %v", err)
	}

	session := NewSessionHandler(app)
	tasks := NewTaskHandler(app)
	notifications := NewNotificationHandler(app)

	router := mux.NewRouter()
	router.HandleFunc("/api/session/login", session.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/session/register", session.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks", tasks.CreateTask).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks/{taskID}", tasks.UpdateTask).Methods(http.MethodPut)
	router.HandleFunc("/api/tasks/{taskID}/move", tasks.MoveTask).Methods(http.MethodPost)
	router.HandleFunc("/api/notifications", notifications.GetNotifications).Methods(http.MethodGet)
	return router
}

func do(t *testing.T, router *mux.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, payload
}

func TestSessionEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("login returns token and snapshot", func(t *testing.T) {
		rec, payload := do(t, router, http.MethodPost, "/api/session/login", `{"username":"alice","password":"pw"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", rec.Code, payload)
		}
		if payload["token"] != "token-alice" {
			t.Errorf("expected token-alice, got %v", payload["token"])
		}
		state, _ := payload["state"].(map[string]any)
		auth, _ := state["auth"].(map[string]any)
		if auth["isAuthenticated"] != true {
			t.Errorf("expected authenticated snapshot, got %v", auth)
		}
	})

	t.Run("collaborator rejection surfaces verbatim as 401", func(t *testing.T) {
		rec, payload := do(t, router, http.MethodPost, "/api/session/login", `{"username":"alice","password":"bad"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if payload["error"] != "Invalid credentials" {
			t.Errorf("expected collaborator message, got %v", payload["error"])
		}
	})

	t.Run("blank credentials are a 400", func(t *testing.T) {
		rec, _ := do(t, router, http.MethodPost, "/api/session/login", `{"username":" ","password":"pw"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("register conflict keeps the upstream 409", func(t *testing.T) {
		rec, payload := do(t, router, http.MethodPost, "/api/session/register", `{"username":"taken","password":"pw"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		if payload["error"] != "User exists" {
			t.Errorf("expected collaborator message, got %v", payload["error"])
		}
	})

	t.Run("unreachable auth service is a bad gateway", func(t *testing.T) {
		rec, _ := do(t, router, http.MethodPost, "/api/session/login", `{"username":"down","password":"pw"}`)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
	})
}

func TestTaskEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("create returns the stored task", func(t *testing.T) {
		rec, payload := do(t, router, http.MethodPost, "/api/tasks", `{"columnId":"c2","title":"Ship it"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %v", rec.Code, payload)
		}
		task, _ := payload["task"].(map[string]any)
		if task["id"] != "3" {
			t.Errorf("expected allocated id 3, got %v", task["id"])
		}
		if task["boardId"] != "b1" {
			t.Errorf("expected board adopted from column, got %v", task["boardId"])
		}
	})

	t.Run("create rejects a blank title", func(t *testing.T) {
		rec, _ := do(t, router, http.MethodPost, "/api/tasks", `{"columnId":"c2","title":"  "}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("update of an unknown task is a 404", func(t *testing.T) {
		rec, _ := do(t, router, http.MethodPut, "/api/tasks/nope", `{"title":"X"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("move renumbers the column", func(t *testing.T) {
		rec, payload := do(t, router, http.MethodPost, "/api/tasks/2/move", `{"overId":"1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		state, _ := payload["state"].(map[string]any)
		tasks, _ := state["tasks"].([]any)
		positions := map[string]float64{}
		for _, raw := range tasks {
			task := raw.(map[string]any)
			positions[task["id"].(string)] = task["position"].(float64)
		}
		if positions["2"] != 0 || positions["1"] != 1 {
			t.Errorf("expected task 2 first, task 1 second, got %v", positions)
		}
	})
}

func TestNotificationsRequireSession(t *testing.T) {
	router := newTestRouter(t)
	rec, _ := do(t, router, http.MethodGet, "/api/notifications", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
