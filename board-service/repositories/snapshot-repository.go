package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"taskboard/board-service/models"
	"taskboard/logging"
)

// The whole application snapshot persists as one JSON document in a sqlite
// key-value table. Timestamps round-trip as RFC3339 strings and rehydrate to
// time.Time on load.

const snapshotKey = "kanban-app-state"

// InitDB opens the board database and creates the snapshot table.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS app_state (
		key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create app_state table: %w", err)
	}

	return db, nil
}

type SnapshotRepo struct {
	db *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Load reads the persisted snapshot. On first use, when no snapshot exists,
// the store is seeded with the demo dataset and the seed is written back. A
// snapshot that fails to parse degrades to an empty-but-valid state carrying
// whatever user list could be salvaged; that path is logged, never fatal.
func (r *SnapshotRepo) Load() (models.AppState, error) {
	row := r.db.QueryRow("SELECT data FROM app_state WHERE key = ?", snapshotKey)

	var raw string
	err := row.Scan(&raw)
	if err == sql.ErrNoRows {
		seed := DemoState()
		if saveErr := r.Save(seed); saveErr != nil {
			return seed, fmt.Errorf("failed to write seed snapshot: %w", saveErr)
		}
		logging.Logger.Info("Event ID: STORE_SEEDED, Description: No snapshot found, seeded demo dataset")
		return seed, nil
	}
	if err != nil {
		return models.AppState{}, fmt.Errorf("failed to query snapshot: %w", err)
	}

	var state models.AppState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		logging.Logger.Errorf("Event ID: SNAPSHOT_PARSE_FAILED, Description: Falling back to empty state: %v", err)
		return models.EmptyState(salvageUsers(raw)), nil
	}

	return normalize(state), nil
}

// Save writes the snapshot atomically under its single key. There is exactly
// one authoritative record; the session user and user list are projections
// computed on read, not separately stored copies.
func (r *SnapshotRepo) Save(state models.AppState) error {
	data, err := json.Marshal(normalize(state))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO app_state (key, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, snapshotKey, string(data))
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// CurrentUser projects the session user out of the snapshot.
func (r *SnapshotRepo) CurrentUser() (*models.User, error) {
	state, err := r.Load()
	if err != nil {
		return nil, err
	}
	return state.Auth.User, nil
}

// Users projects the user list out of the snapshot.
func (r *SnapshotRepo) Users() ([]models.User, error) {
	state, err := r.Load()
	if err != nil {
		return nil, err
	}
	return state.Users, nil
}

// salvageUsers tries to decode just the user list from a snapshot that
// failed to parse as a whole. When even that fails, the demo users stand in.
func salvageUsers(raw string) []models.User {
	var partial struct {
		Users []models.User `json:"users"`
	}
	if err := json.Unmarshal([]byte(raw), &partial); err == nil && len(partial.Users) > 0 {
		return partial.Users
	}
	return DemoUsers()
}

// normalize replaces nil collections with empty ones so the snapshot always
// serializes to arrays, matching the persisted layout.
func normalize(state models.AppState) models.AppState {
	if state.Boards == nil {
		state.Boards = []models.Board{}
	}
	if state.Columns == nil {
		state.Columns = []models.Column{}
	}
	if state.Tasks == nil {
		state.Tasks = []models.Task{}
	}
	if state.Notifications == nil {
		state.Notifications = []models.Notification{}
	}
	if state.Users == nil {
		state.Users = []models.User{}
	}
	return state
}
