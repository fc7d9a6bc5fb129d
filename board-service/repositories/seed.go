package repositories

import (
	"time"

	"taskboard/board-service/models"
)

// Demo dataset written on first use. The demo user ids are stable so they
// can be recognized and protected from removal.

var demoUserIDs = map[string]struct{}{
	"demo-1": {},
	"demo-2": {},
	"demo-3": {},
}

// IsDemoUser reports whether the id belongs to the seed dataset.
func IsDemoUser(id string) bool {
	_, ok := demoUserIDs[id]
	return ok
}

func DemoUsers() []models.User {
	return []models.User{
		{ID: "demo-1", Name: "Alice Novak", Email: "alice@example.com"},
		{ID: "demo-2", Name: "Marko Ilic", Email: "marko@example.com"},
		{ID: "demo-3", Name: "Jana Petrov", Email: "jana@example.com"},
	}
}

// DemoState builds the initial snapshot: one board with its five workflow
// columns and a few tasks spread over the first two stages.
func DemoState() models.AppState {
	now := time.Now()
	users := DemoUsers()

	board := models.Board{
		ID:          "board-demo",
		Name:        "Sprint 1",
		Description: "Demo board",
		OwnerID:     users[0].ID,
		Members:     []string{users[0].ID, users[1].ID, users[2].ID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	columns := make([]models.Column, 0, len(models.DefaultColumnNames))
	columnIDs := make(map[string]string, len(models.DefaultColumnNames))
	for i, name := range models.DefaultColumnNames {
		id := "column-demo-" + name
		columnIDs[name] = id
		columns = append(columns, models.Column{
			ID:        id,
			BoardID:   board.ID,
			Name:      name,
			Position:  i,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	tasks := []models.Task{
		{
			ID: "1", ColumnID: columnIDs["Backlog"], BoardID: board.ID,
			Title: "Set up project repository", Position: 0,
			AssignedTo: []string{users[0].ID},
			Tags:       []string{"high", "backend"},
			CreatedAt:  now, UpdatedAt: now,
		},
		{
			ID: "2", ColumnID: columnIDs["Backlog"], BoardID: board.ID,
			Title: "Design login screen", Position: 1,
			AssignedTo: []string{users[1].ID},
			Tags:       []string{"medium", "design"},
			CreatedAt:  now, UpdatedAt: now,
		},
		{
			ID: "3", ColumnID: columnIDs["To do"], BoardID: board.ID,
			Title: "Write API documentation", Position: 0,
			Tags:      []string{"low", "documentation"},
			CreatedAt: now, UpdatedAt: now,
		},
	}

	return models.AppState{
		Boards:        []models.Board{board},
		Columns:       columns,
		Tasks:         tasks,
		Notifications: []models.Notification{},
		Users:         users,
	}
}
