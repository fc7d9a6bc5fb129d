package services

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"taskboard/auth-service/models"
	"taskboard/auth-service/repositories"
	"taskboard/logging"
	"taskboard/utils"
)

var (
	ErrMissingFields      = errors.New("Missing fields")
	ErrUserExists         = errors.New("User exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserNotFound       = errors.New("User not found")
)

type AuthService struct {
	users *repositories.UserRepo
}

func NewAuthService(users *repositories.UserRepo) *AuthService {
	return &AuthService{users: users}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, ErrMissingFields
	}

	if _, err := s.users.FindByUsername(username); err == nil {
		return models.User{}, ErrUserExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(username, string(hash))
	if err != nil {
		return models.User{}, err
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User '%s' registered", username)
	return user, nil
}

// Login checks credentials and issues a bearer token valid for one day.
func (s *AuthService) Login(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrMissingFields
	}

	user, err := s.users.FindByUsername(username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	logging.Logger.Infof("Event ID: USER_LOGIN, Description: User '%s' signed in", username)
	return token, nil
}

// Me resolves the profile behind a token's user id.
func (s *AuthService) Me(userID int64) (models.User, error) {
	user, err := s.users.FindByID(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}
