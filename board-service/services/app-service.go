package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/board-service/clients"
	"taskboard/board-service/models"
	"taskboard/board-service/repositories"
	"taskboard/logging"
)

var (
	ErrInvalid         = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("operation not allowed")
	ErrUnauthenticated = errors.New("no active session")
)

// Board delete policies. Orphan reproduces the historical behavior where
// columns and tasks of a deleted board stay behind as tolerated orphans;
// cascade removes them with the board.
const (
	DeletePolicyOrphan  = "orphan"
	DeletePolicyCascade = "cascade"
)

// SnapshotStore persists the application snapshot.
type SnapshotStore interface {
	Load() (models.AppState, error)
	Save(models.AppState) error
}

// AuthAPI is the authentication collaborator.
type AuthAPI interface {
	Register(username, password string) (clients.AuthUser, error)
	Login(username, password string) (string, error)
	Me(token string) (clients.AuthUser, error)
}

// Broadcaster pushes new snapshots to connected clients.
type Broadcaster interface {
	BroadcastState(models.AppState)
}

// AppService owns the application state. It is the single writer: every
// operation takes the lock, applies its commands to completion, flushes the
// snapshot, and broadcasts the result. Reads hand out the current snapshot
// value; snapshots are never mutated in place.
type AppService struct {
	mu           sync.Mutex
	state        models.AppState
	snapshots    SnapshotStore
	auth         AuthAPI
	hub          Broadcaster
	deletePolicy string
	now          func() time.Time
}

func NewAppService(snapshots SnapshotStore, auth AuthAPI, hub Broadcaster, deletePolicy string) (*AppService, error) {
	state, err := snapshots.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if deletePolicy != DeletePolicyCascade {
		deletePolicy = DeletePolicyOrphan
	}
	return &AppService{
		state:        state,
		snapshots:    snapshots,
		auth:         auth,
		hub:          hub,
		deletePolicy: deletePolicy,
		now:          time.Now,
	}, nil
}

// State returns the current snapshot.
func (s *AppService) State() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// applyLocked runs commands through the processor. Caller holds the lock.
func (s *AppService) applyLocked(cmds ...Command) {
	for _, cmd := range cmds {
		s.state = Apply(s.state, cmd, s.now())
	}
}

// commitLocked flushes and broadcasts the current state. A failed flush is
// logged and the in-memory state still advances; the session keeps working
// on unpersisted data rather than failing.
func (s *AppService) commitLocked() models.AppState {
	if err := s.snapshots.Save(s.state); err != nil {
		logging.Logger.Warnf("Event ID: SNAPSHOT_WRITE_FAILED, Description: State advanced but could not be persisted: %v", err)
	}
	if s.hub != nil {
		s.hub.BroadcastState(s.state)
	}
	return s.state
}

func authUserToModel(au clients.AuthUser) models.User {
	return models.User{
		ID:    strconv.FormatInt(au.ID, 10),
		Name:  au.Username,
		Email: au.Username,
	}
}

// Register creates an account with the auth collaborator, logs it in, and
// opens the session.
func (s *AppService) Register(username, password string) (string, models.AppState, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return "", models.AppState{}, fmt.Errorf("%w: username and password are required", ErrInvalid)
	}

	if _, err := s.auth.Register(username, password); err != nil {
		return "", models.AppState{}, err
	}
	return s.Login(username, password)
}

// Login exchanges credentials for a token and opens the session. The
// Authenticate command upserts the user and joins every board.
func (s *AppService) Login(username, password string) (string, models.AppState, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return "", models.AppState{}, fmt.Errorf("%w: username and password are required", ErrInvalid)
	}

	token, err := s.auth.Login(username, password)
	if err != nil {
		return "", models.AppState{}, err
	}
	profile, err := s.auth.Me(token)
	if err != nil {
		return "", models.AppState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(AuthenticateCommand{User: authUserToModel(profile)})
	return token, s.commitLocked(), nil
}

// Logout closes the session.
func (s *AppService) Logout() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(EndSessionCommand{})
	return s.commitLocked()
}

// CreateBoard creates a board owned by the session user.
func (s *AppService) CreateBoard(name, description string) (models.Board, models.AppState, error) {
	if strings.TrimSpace(name) == "" {
		return models.Board{}, models.AppState{}, fmt.Errorf("%w: board name is required", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Auth.User == nil {
		return models.Board{}, models.AppState{}, ErrUnauthenticated
	}

	now := s.now()
	board := models.Board{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		OwnerID:     s.state.Auth.User.ID,
		Members:     []string{s.state.Auth.User.ID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.applyLocked(CreateBoardCommand{Board: board})
	return board, s.commitLocked(), nil
}

// UpdateBoard replaces a board record.
func (s *AppService) UpdateBoard(board models.Board) (models.AppState, error) {
	if strings.TrimSpace(board.Name) == "" {
		return models.AppState{}, fmt.Errorf("%w: board name is required", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.FindBoard(board.ID) == nil {
		return models.AppState{}, fmt.Errorf("%w: board %s", ErrNotFound, board.ID)
	}
	s.applyLocked(UpdateBoardCommand{Board: board})
	return s.commitLocked(), nil
}

// DeleteBoard removes a board. Under the cascade policy the board's columns
// go with it, taking their tasks; under the orphan policy they stay behind
// and display logic treats the dangling references as unknown.
func (s *AppService) DeleteBoard(boardID string) models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmds := []Command{DeleteBoardCommand{BoardID: boardID}}
	if s.deletePolicy == DeletePolicyCascade {
		for _, col := range s.state.Columns {
			if col.BoardID == boardID {
				cmds = append(cmds, DeleteColumnCommand{ColumnID: col.ID})
			}
		}
	}
	s.applyLocked(cmds...)
	return s.commitLocked()
}

// OpenBoard makes the board current and lazily creates any of the five
// default columns it is still missing, matched by name.
func (s *AppService) OpenBoard(boardID string) (models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board := s.state.FindBoard(boardID)
	if board == nil {
		return models.AppState{}, fmt.Errorf("%w: board %s", ErrNotFound, boardID)
	}

	cmds := []Command{SetCurrentBoardCommand{Board: board}}
	existing := make(map[string]bool)
	for _, col := range s.state.Columns {
		if col.BoardID == boardID {
			existing[col.Name] = true
		}
	}
	now := s.now()
	for i, name := range models.DefaultColumnNames {
		if existing[name] {
			continue
		}
		cmds = append(cmds, CreateColumnCommand{Column: models.Column{
			ID:        uuid.New().String(),
			BoardID:   boardID,
			Name:      name,
			Position:  i,
			CreatedAt: now,
			UpdatedAt: now,
		}})
	}
	s.applyLocked(cmds...)
	return s.commitLocked(), nil
}

// InviteMembers adds users to the board's member set. Only ids that actually
// join the set are notified, so duplicate ids in one request and re-invites
// of existing members fan out nothing.
func (s *AppService) InviteMembers(boardID string, userIDs []string) (models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board := s.state.FindBoard(boardID)
	if board == nil {
		return models.AppState{}, fmt.Errorf("%w: board %s", ErrNotFound, boardID)
	}

	added := NewlyAssigned(board.Members, dedupeMembers(userIDs))
	updated := *board
	updated.Members = dedupeMembers(append(append([]string{}, board.Members...), userIDs...))

	cmds := []Command{UpdateBoardCommand{Board: updated}}
	for _, n := range BoardInvitedNotifications(s.state.Users, added, board.Name, s.now()) {
		cmds = append(cmds, AddNotificationCommand{Notification: n})
	}
	s.applyLocked(cmds...)
	return s.commitLocked(), nil
}

// RemoveMember drops a user from the board's member set.
func (s *AppService) RemoveMember(boardID, userID string) (models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board := s.state.FindBoard(boardID)
	if board == nil {
		return models.AppState{}, fmt.Errorf("%w: board %s", ErrNotFound, boardID)
	}

	updated := *board
	updated.Members = []string{}
	for _, id := range board.Members {
		if id != userID {
			updated.Members = append(updated.Members, id)
		}
	}
	s.applyLocked(UpdateBoardCommand{Board: updated})
	return s.commitLocked(), nil
}

// QuickAddUser creates an ad-hoc user during invite/assign flows.
func (s *AppService) QuickAddUser(name, email string) (models.User, models.AppState, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return models.User{}, models.AppState{}, fmt.Errorf("%w: name and email are required", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.Users {
		if strings.EqualFold(u.Email, email) {
			return models.User{}, models.AppState{}, fmt.Errorf("%w: email already in use", ErrInvalid)
		}
	}

	user := models.User{
		ID:    "u-" + uuid.New().String(),
		Name:  name,
		Email: email,
	}
	s.applyLocked(SetUsersCommand{Users: append(append([]models.User{}, s.state.Users...), user)})
	return user, s.commitLocked(), nil
}

// RemoveUser removes a user from the list. The session user and the seed
// users are protected.
func (s *AppService) RemoveUser(userID string) (models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Auth.User != nil && s.state.Auth.User.ID == userID {
		return models.AppState{}, fmt.Errorf("%w: cannot remove the signed-in user", ErrForbidden)
	}
	if repositories.IsDemoUser(userID) {
		return models.AppState{}, fmt.Errorf("%w: cannot remove a demo user", ErrForbidden)
	}
	if s.state.FindUser(userID) == nil {
		return models.AppState{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	var users []models.User
	for _, u := range s.state.Users {
		if u.ID != userID {
			users = append(users, u)
		}
	}
	s.applyLocked(SetUsersCommand{Users: users})
	return s.commitLocked(), nil
}

// CreateTask appends a task to its column; id and position are assigned by
// the command processor. Every assignee is notified.
func (s *AppService) CreateTask(task models.Task) (models.Task, models.AppState, error) {
	if strings.TrimSpace(task.Title) == "" {
		return models.Task{}, models.AppState{}, fmt.Errorf("%w: task title is required", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task.Title = strings.TrimSpace(task.Title)
	task.CreatedAt = now
	task.UpdatedAt = now
	if col := s.state.FindColumn(task.ColumnID); col != nil {
		task.BoardID = col.BoardID
	}

	s.applyLocked(CreateTaskCommand{Task: task})
	created := s.state.Tasks[len(s.state.Tasks)-1]

	for _, n := range TaskAssignedNotifications(s.state.Users, created.AssignedTo, created.Title, now) {
		s.applyLocked(AddNotificationCommand{Notification: n})
	}
	return created, s.commitLocked(), nil
}

// UpdateTask replaces a task record. Only newly-assigned users are notified.
func (s *AppService) UpdateTask(task models.Task) (models.AppState, error) {
	if strings.TrimSpace(task.Title) == "" {
		return models.AppState{}, fmt.Errorf("%w: task title is required", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.FindTask(task.ID)
	if prev == nil {
		return models.AppState{}, fmt.Errorf("%w: task %s", ErrNotFound, task.ID)
	}

	added := NewlyAssigned(prev.AssignedTo, task.AssignedTo)
	cmds := []Command{UpdateTaskCommand{Task: task}}
	for _, n := range TaskAssignedNotifications(s.state.Users, added, task.Title, s.now()) {
		cmds = append(cmds, AddNotificationCommand{Notification: n})
	}
	s.applyLocked(cmds...)
	return s.commitLocked(), nil
}

// DeleteTask removes a task without renumbering its siblings.
func (s *AppService) DeleteTask(taskID string) models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(DeleteTaskCommand{TaskID: taskID})
	return s.commitLocked()
}

// DropTask applies a drag-and-drop gesture: the reconciler turns it into
// the MoveTask commands that keep the affected columns dense.
func (s *AppService) DropTask(taskID, overID string) models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()

	moves := ResolveDrop(s.state, taskID, overID)
	if len(moves) == 0 {
		return s.state
	}
	for _, move := range moves {
		s.applyLocked(move)
	}
	return s.commitLocked()
}

// MarkNotificationRead flags a notification as read. Idempotent.
func (s *AppService) MarkNotificationRead(notificationID string) models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(MarkNotificationReadCommand{NotificationID: notificationID})
	return s.commitLocked()
}
