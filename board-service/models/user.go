package models

import "strings"

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// DisplayName resolves the name shown for a user: name if present, otherwise
// email, otherwise "unknown".
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	if strings.TrimSpace(u.Email) != "" {
		return u.Email
	}
	return "unknown"
}
