package repositories

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"taskboard/auth-service/models"
)

// InitDB opens the auth database and creates the users table.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	return db, nil
}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ErrNoUser is returned when no row matches.
var ErrNoUser = sql.ErrNoRows

func (r *UserRepo) Create(username, passwordHash string) (models.User, error) {
	result, err := r.db.Exec("INSERT INTO users (username, password) VALUES (?, ?)", username, passwordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return models.User{ID: id, Username: username, Password: passwordHash}, nil
}

func (r *UserRepo) FindByUsername(username string) (models.User, error) {
	var user models.User
	row := r.db.QueryRow("SELECT id, username, password FROM users WHERE username = ?", username)
	if err := row.Scan(&user.ID, &user.Username, &user.Password); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepo) FindByID(id int64) (models.User, error) {
	var user models.User
	row := r.db.QueryRow("SELECT id, username, password FROM users WHERE id = ?", id)
	if err := row.Scan(&user.ID, &user.Username, &user.Password); err != nil {
		return models.User{}, err
	}
	return user, nil
}
