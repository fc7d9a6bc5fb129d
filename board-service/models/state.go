package models

import "sort"

type AuthState struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

// AppState is the full application snapshot. It is persisted as one atomic
// JSON document on every change.
type AppState struct {
	Auth          AuthState      `json:"auth"`
	Boards        []Board        `json:"boards"`
	CurrentBoard  *Board         `json:"currentBoard"`
	Columns       []Column       `json:"columns"`
	Tasks         []Task         `json:"tasks"`
	Notifications []Notification `json:"notifications"`
	Users         []User         `json:"users"`
}

// EmptyState returns a valid zero snapshot carrying the given user list.
func EmptyState(users []User) AppState {
	return AppState{
		Boards:        []Board{},
		Columns:       []Column{},
		Tasks:         []Task{},
		Notifications: []Notification{},
		Users:         users,
	}
}

func (s AppState) FindBoard(id string) *Board {
	for i := range s.Boards {
		if s.Boards[i].ID == id {
			return &s.Boards[i]
		}
	}
	return nil
}

func (s AppState) FindColumn(id string) *Column {
	for i := range s.Columns {
		if s.Columns[i].ID == id {
			return &s.Columns[i]
		}
	}
	return nil
}

func (s AppState) FindTask(id string) *Task {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i]
		}
	}
	return nil
}

func (s AppState) FindUser(id string) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// TasksInColumn returns the tasks of one column sorted by ascending position.
func (s AppState) TasksInColumn(columnID string) []Task {
	var tasks []Task
	for _, t := range s.Tasks {
		if t.ColumnID == columnID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })
	return tasks
}

// ColumnsForBoard returns the board's columns ordered by DefaultColumnNames.
func (s AppState) ColumnsForBoard(boardID string) []Column {
	byName := make(map[string]Column)
	for _, c := range s.Columns {
		if c.BoardID == boardID {
			byName[c.Name] = c
		}
	}
	var columns []Column
	for _, name := range DefaultColumnNames {
		if c, ok := byName[name]; ok {
			columns = append(columns, c)
		}
	}
	return columns
}
