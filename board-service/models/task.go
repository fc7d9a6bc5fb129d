package models

import (
	"strings"
	"time"
)

type Task struct {
	ID          string    `json:"id"`
	ColumnID    string    `json:"columnId"`
	BoardID     string    `json:"boardId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Position    int       `json:"position"`
	AssignedTo  []string  `json:"assignedTo,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PriorityTags are the tag values treated as a task priority. The first tag
// matching this set is the task's priority.
var PriorityTags = []string{"low", "medium", "high"}

func isPriorityTag(tag string) bool {
	tag = strings.ToLower(tag)
	for _, p := range PriorityTags {
		if tag == p {
			return true
		}
	}
	return false
}

// Priority returns the task's priority: the first tag in {low, medium, high},
// or "low" when no tag matches. The default is display-only and never written
// back into Tags.
func (t Task) Priority() string {
	for _, tag := range t.Tags {
		if isPriorityTag(tag) {
			return strings.ToLower(tag)
		}
	}
	return "low"
}
