package models

import "time"

type NotificationType string

const (
	NotificationTaskAssigned NotificationType = "task_assigned"
	NotificationBoardInvited NotificationType = "board_invited"
	NotificationTaskUpdated  NotificationType = "task_updated"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
