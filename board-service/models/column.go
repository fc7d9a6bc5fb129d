package models

import "time"

// DefaultColumnNames are the five fixed workflow stages of every board, in
// display order. Boards never have columns outside this set.
var DefaultColumnNames = []string{"Backlog", "To do", "In progress", "Testing", "Done"}

type Column struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"boardId"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
