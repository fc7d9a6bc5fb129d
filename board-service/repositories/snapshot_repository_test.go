package repositories

import (
	"database/sql"
	"testing"
	"time"

	"taskboard/board-service/models"
)

func openTestRepo(t *testing.T) (*SnapshotRepo, *sql.DB) {
	t.Helper()
	db, err := InitDB(":memory:")
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSnapshotRepo(db), db
}

func TestLoadSeedsEmptyStore(t *testing.T) {
	repo, db := openTestRepo(t)

	state, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Boards) != 1 || state.Boards[0].Name != "Sprint 1" {
		t.Errorf("expected demo board, got %+v", state.Boards)
	}
	if len(state.Columns) != len(models.DefaultColumnNames) {
		t.Errorf("expected %d columns, got %d", len(models.DefaultColumnNames), len(state.Columns))
	}
	if len(state.Users) != 3 {
		t.Errorf("expected 3 demo users, got %d", len(state.Users))
	}

	// The seed must have been written back, not just returned.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM app_state").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected seed row persisted, got %d rows", count)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo, _ := openTestRepo(t)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := models.AppState{
		Auth: models.AuthState{
			User:            &models.User{ID: "u1", Name: "Alice", Email: "alice@example.com"},
			IsAuthenticated: true,
		},
		Boards: []models.Board{{ID: "b1", Name: "Roadmap", OwnerID: "u1", Members: []string{"u1"}, CreatedAt: now, UpdatedAt: now}},
		Columns: []models.Column{
			{ID: "c1", BoardID: "b1", Name: "Backlog", Position: 0, CreatedAt: now, UpdatedAt: now},
		},
		Tasks: []models.Task{
			{ID: "1", ColumnID: "c1", BoardID: "b1", Title: "Plan", Position: 0, AssignedTo: []string{"u1"}, Tags: []string{"high"}, CreatedAt: now, UpdatedAt: now},
		},
		Notifications: []models.Notification{
			{ID: "n1", UserID: "u1", Type: models.NotificationTaskAssigned, Title: "New task assigned", Message: "m", CreatedAt: now},
		},
		Users: []models.User{{ID: "u1", Name: "Alice", Email: "alice@example.com"}},
	}

	if err := repo.Save(state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !got.Auth.IsAuthenticated || got.Auth.User.ID != "u1" {
		t.Errorf("session did not survive the round trip: %+v", got.Auth)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Title != "Plan" {
		t.Errorf("tasks did not survive: %+v", got.Tasks)
	}
	if !got.Tasks[0].CreatedAt.Equal(now) {
		t.Errorf("timestamp did not rehydrate, got %v", got.Tasks[0].CreatedAt)
	}
	if len(got.Notifications) != 1 || got.Notifications[0].Type != models.NotificationTaskAssigned {
		t.Errorf("notifications did not survive: %+v", got.Notifications)
	}
}

func TestSaveOverwritesSingleKey(t *testing.T) {
	repo, db := openTestRepo(t)

	first := models.EmptyState(nil)
	first.Boards = []models.Board{{ID: "b1", Name: "First"}}
	if err := repo.Save(first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := models.EmptyState(nil)
	second.Boards = []models.Board{{ID: "b2", Name: "Second"}}
	if err := repo.Save(second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM app_state").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one authoritative row, got %d", count)
	}

	got, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Boards) != 1 || got.Boards[0].ID != "b2" {
		t.Errorf("expected the second snapshot to win, got %+v", got.Boards)
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	t.Run("salvages the user list", func(t *testing.T) {
		repo, db := openTestRepo(t)
		corrupt := `{"users":[{"id":"u9","name":"Rescued","email":"r@example.com"}],"boards":"not-an-array"}`
		if _, err := db.Exec("INSERT INTO app_state (key, data) VALUES ('kanban-app-state', ?)", corrupt); err != nil {
			t.Fatalf("insert: %v", err)
		}

		state, err := repo.Load()
		if err != nil {
			t.Fatalf("Load must not fail on a corrupt snapshot: %v", err)
		}
		if len(state.Users) != 1 || state.Users[0].ID != "u9" {
			t.Errorf("expected salvaged user list, got %+v", state.Users)
		}
		if len(state.Boards) != 0 || state.Boards == nil {
			t.Errorf("expected empty board list, got %+v", state.Boards)
		}
	})

	t.Run("falls back to demo users when nothing is salvageable", func(t *testing.T) {
		repo, db := openTestRepo(t)
		if _, err := db.Exec("INSERT INTO app_state (key, data) VALUES ('kanban-app-state', 'not json at all')"); err != nil {
			t.Fatalf("insert: %v", err)
		}

		state, err := repo.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(state.Users) != 3 || !IsDemoUser(state.Users[0].ID) {
			t.Errorf("expected demo users, got %+v", state.Users)
		}
	})
}

func TestProjections(t *testing.T) {
	repo, _ := openTestRepo(t)

	state := models.EmptyState([]models.User{{ID: "u1", Name: "Alice"}})
	state.Auth = models.AuthState{User: &state.Users[0], IsAuthenticated: true}
	if err := repo.Save(state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	current, err := repo.CurrentUser()
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if current == nil || current.ID != "u1" {
		t.Errorf("expected session user u1, got %+v", current)
	}

	users, err := repo.Users()
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 || users[0].Name != "Alice" {
		t.Errorf("expected projected user list, got %+v", users)
	}
}

func TestDemoStateIsDense(t *testing.T) {
	state := DemoState()
	for _, col := range state.Columns {
		for i, task := range state.TasksInColumn(col.ID) {
			if task.Position != i {
				t.Errorf("seed column %s not dense: task %s at position %d, index %d", col.Name, task.ID, task.Position, i)
			}
		}
	}
	for _, task := range state.Tasks {
		if state.FindColumn(task.ColumnID) == nil {
			t.Errorf("seed task %s references unknown column %s", task.ID, task.ColumnID)
		}
	}
}
