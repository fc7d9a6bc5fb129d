package services

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"taskboard/board-service/models"
)

// Command is a state transition request. Every mutation of the application
// snapshot goes through Apply with exactly one command.
type Command interface {
	isCommand()
}

type AuthenticateCommand struct{ User models.User }
type EndSessionCommand struct{}
type SetBoardsCommand struct{ Boards []models.Board }
type CreateBoardCommand struct{ Board models.Board }
type UpdateBoardCommand struct{ Board models.Board }
type DeleteBoardCommand struct{ BoardID string }
type SetCurrentBoardCommand struct{ Board *models.Board }
type SetColumnsCommand struct{ Columns []models.Column }
type CreateColumnCommand struct{ Column models.Column }
type UpdateColumnCommand struct{ Column models.Column }
type DeleteColumnCommand struct{ ColumnID string }
type SetTasksCommand struct{ Tasks []models.Task }
type CreateTaskCommand struct{ Task models.Task }
type UpdateTaskCommand struct{ Task models.Task }
type DeleteTaskCommand struct{ TaskID string }
type MoveTaskCommand struct {
	TaskID   string
	ColumnID string
	Position int
}
type AddNotificationCommand struct{ Notification models.Notification }
type MarkNotificationReadCommand struct{ NotificationID string }
type SetUsersCommand struct{ Users []models.User }

func (AuthenticateCommand) isCommand()         {}
func (EndSessionCommand) isCommand()           {}
func (SetBoardsCommand) isCommand()            {}
func (CreateBoardCommand) isCommand()          {}
func (UpdateBoardCommand) isCommand()          {}
func (DeleteBoardCommand) isCommand()          {}
func (SetCurrentBoardCommand) isCommand()      {}
func (SetColumnsCommand) isCommand()           {}
func (CreateColumnCommand) isCommand()         {}
func (UpdateColumnCommand) isCommand()         {}
func (DeleteColumnCommand) isCommand()         {}
func (SetTasksCommand) isCommand()             {}
func (CreateTaskCommand) isCommand()           {}
func (UpdateTaskCommand) isCommand()           {}
func (DeleteTaskCommand) isCommand()           {}
func (MoveTaskCommand) isCommand()             {}
func (AddNotificationCommand) isCommand()      {}
func (MarkNotificationReadCommand) isCommand() {}
func (SetUsersCommand) isCommand()             {}

// Apply maps (state, command) to the next state. It never mutates its input:
// every affected collection is rebuilt from copies, so callers can rely on
// pointer and value comparisons between successive snapshots. Unknown
// commands return the state unchanged. The caller supplies now so that a
// given (state, command, now) triple is fully deterministic.
func Apply(state models.AppState, cmd Command, now time.Time) models.AppState {
	switch c := cmd.(type) {
	case AuthenticateCommand:
		return applyAuthenticate(state, c.User, now)

	case EndSessionCommand:
		state.Auth = models.AuthState{}
		return state

	case SetBoardsCommand:
		state.Boards = slices.Clone(c.Boards)
		return state

	case CreateBoardCommand:
		state.Boards = append(slices.Clone(state.Boards), c.Board)
		return state

	case UpdateBoardCommand:
		boards := slices.Clone(state.Boards)
		for i, b := range boards {
			if b.ID == c.Board.ID {
				updated := c.Board
				updated.UpdatedAt = now
				boards[i] = updated
			}
		}
		state.Boards = boards
		return state

	case DeleteBoardCommand:
		var boards []models.Board
		for _, b := range state.Boards {
			if b.ID != c.BoardID {
				boards = append(boards, b)
			}
		}
		state.Boards = boards
		if state.CurrentBoard != nil && state.CurrentBoard.ID == c.BoardID {
			state.CurrentBoard = nil
		}
		return state

	case SetCurrentBoardCommand:
		if c.Board == nil {
			state.CurrentBoard = nil
		} else {
			board := *c.Board
			state.CurrentBoard = &board
		}
		return state

	case SetColumnsCommand:
		state.Columns = slices.Clone(c.Columns)
		return state

	case CreateColumnCommand:
		state.Columns = append(slices.Clone(state.Columns), c.Column)
		return state

	case UpdateColumnCommand:
		columns := slices.Clone(state.Columns)
		for i, col := range columns {
			if col.ID == c.Column.ID {
				columns[i] = c.Column
			}
		}
		state.Columns = columns
		return state

	case DeleteColumnCommand:
		// The one cascading delete: tasks of the removed column go with it.
		var columns []models.Column
		for _, col := range state.Columns {
			if col.ID != c.ColumnID {
				columns = append(columns, col)
			}
		}
		var tasks []models.Task
		for _, t := range state.Tasks {
			if t.ColumnID != c.ColumnID {
				tasks = append(tasks, t)
			}
		}
		state.Columns = columns
		state.Tasks = tasks
		return state

	case SetTasksCommand:
		state.Tasks = slices.Clone(c.Tasks)
		return state

	case CreateTaskCommand:
		task := c.Task
		task.ID = nextTaskID(state.Tasks)
		task.Position = len(state.TasksInColumn(task.ColumnID))
		state.Tasks = append(slices.Clone(state.Tasks), task)
		return state

	case UpdateTaskCommand:
		tasks := slices.Clone(state.Tasks)
		for i, t := range tasks {
			if t.ID == c.Task.ID {
				updated := c.Task
				updated.UpdatedAt = now
				tasks[i] = updated
			}
		}
		state.Tasks = tasks
		return state

	case DeleteTaskCommand:
		// Sibling positions are deliberately left untouched; restoring
		// density is the reconciler's job.
		var tasks []models.Task
		for _, t := range state.Tasks {
			if t.ID != c.TaskID {
				tasks = append(tasks, t)
			}
		}
		state.Tasks = tasks
		return state

	case MoveTaskCommand:
		tasks := slices.Clone(state.Tasks)
		for i, t := range tasks {
			if t.ID == c.TaskID {
				moved := t
				moved.ColumnID = c.ColumnID
				moved.Position = c.Position
				tasks[i] = moved
			}
		}
		state.Tasks = tasks
		return state

	case AddNotificationCommand:
		notifications := make([]models.Notification, 0, len(state.Notifications)+1)
		notifications = append(notifications, c.Notification)
		notifications = append(notifications, state.Notifications...)
		state.Notifications = notifications
		return state

	case MarkNotificationReadCommand:
		notifications := slices.Clone(state.Notifications)
		for i, n := range notifications {
			if n.ID == c.NotificationID {
				n.Read = true
				notifications[i] = n
			}
		}
		state.Notifications = notifications
		return state

	case SetUsersCommand:
		state.Users = slices.Clone(c.Users)
		return state
	}

	return state
}

// applyAuthenticate upserts the user into the user list (matched by id or
// case-insensitive email), adds the user to every board's member set, and
// opens the session. This is the one command that spans the users and boards
// collections.
func applyAuthenticate(state models.AppState, user models.User, now time.Time) models.AppState {
	emailLower := strings.ToLower(user.Email)
	matches := func(u models.User) bool {
		return u.ID == user.ID || (u.Email != "" && strings.ToLower(u.Email) == emailLower)
	}

	found := false
	users := slices.Clone(state.Users)
	for i, u := range users {
		if matches(u) {
			users[i] = mergeUser(u, user)
			found = true
		}
	}
	if !found {
		users = append(users, user)
	}

	boards := make([]models.Board, len(state.Boards))
	for i, b := range state.Boards {
		if b.HasMember(user.ID) {
			boards[i] = b
			continue
		}
		updated := b
		updated.Members = append(slices.Clone(b.Members), user.ID)
		updated.UpdatedAt = now
		boards[i] = updated
	}

	sessionUser := user
	state.Users = users
	state.Boards = boards
	state.Auth = models.AuthState{User: &sessionUser, IsAuthenticated: true}
	return state
}

// mergeUser overlays the incoming profile on an existing record, keeping old
// optional fields the incoming record does not carry.
func mergeUser(existing, incoming models.User) models.User {
	merged := incoming
	if merged.Password == "" {
		merged.Password = existing.Password
	}
	if merged.Avatar == "" {
		merged.Avatar = existing.Avatar
	}
	return merged
}

// dedupeMembers removes duplicate ids, keeping first-occurrence order.
func dedupeMembers(members []string) []string {
	seen := make(map[string]struct{}, len(members))
	result := make([]string, 0, len(members))
	for _, id := range members {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// nextTaskID allocates one more than the highest numeric task id across the
// whole store. Allocation happens inside Apply, so the single writer that
// owns the store is the only id source.
func nextTaskID(tasks []models.Task) string {
	maxID := 0
	for _, t := range tasks {
		if n, err := strconv.Atoi(t.ID); err == nil && n > maxID {
			maxID = n
		}
	}
	return strconv.Itoa(maxID + 1)
}
